package scene

import (
	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

type State string

const (
	StateTitle         State = "title"
	StateMainMenu      State = "main_menu"
	StateSetup         State = "setup"
	StateTravel        State = "travel"
	StateHunting       State = "hunting"
	StateRiverCrossing State = "river_crossing"
	StateTrading       State = "trading"
	StateEvent         State = "event"
	StateLandmark      State = "landmark"
	StateGameOver      State = "game_over"
)

// Machine tracks which screen the game is on.
type Machine struct {
	state State
	exit  bool
	sink  trail.EventSink
}

func NewMachine(sink trail.EventSink) *Machine {
	return &Machine{state: StateTitle, sink: sink}
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) TransitionTo(next State) {
	if next == m.state {
		return
	}
	prev := m.state
	m.state = next
	if m.sink != nil {
		m.sink.Emit(trail.Event{
			Kind:  trail.EventSceneTransition,
			Attrs: map[string]any{"from": string(prev), "to": string(next)},
		})
	}
}

// Apply routes a title action. Introduction and Options leave the state
// alone; the host shows their text.
func (m *Machine) Apply(action Action) {
	switch action {
	case ActionTravelTrail:
		m.TransitionTo(StateSetup)
	case ActionQuit:
		m.RequestExit()
	}
}

func (m *Machine) RequestExit() {
	m.exit = true
}

func (m *Machine) ExitRequested() bool {
	return m.exit
}
