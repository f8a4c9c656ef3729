package scene

// Action is what a title button does when clicked.
type Action string

const (
	ActionTravelTrail  Action = "travel_trail"
	ActionIntroduction Action = "introduction"
	ActionOptions      Action = "options"
	ActionQuit         Action = "quit"
)

func (a Action) Label() string {
	switch a {
	case ActionTravelTrail:
		return "Travel the Trail"
	case ActionIntroduction:
		return "Introduction"
	case ActionOptions:
		return "Options"
	case ActionQuit:
		return "Quit"
	default:
		return string(a)
	}
}

type ButtonState int

const (
	ButtonIdle ButtonState = iota
	ButtonHover
	ButtonPressed
)

func (s ButtonState) String() string {
	switch s {
	case ButtonHover:
		return "hover"
	case ButtonPressed:
		return "pressed"
	default:
		return "idle"
	}
}

// Pointer is one frame of pointer input. Pressed and Released are edges;
// Down is the held level.
type Pointer struct {
	X, Y     float64
	Down     bool
	Pressed  bool
	Released bool
}

type Rect struct {
	X, Y, W, H float64
}

// Contains is inclusive on every edge.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

type Button struct {
	Action Action
	Label  string
	Bounds Rect

	state ButtonState
	armed bool
}

func NewButton(action Action, bounds Rect) *Button {
	return &Button{Action: action, Label: action.Label(), Bounds: bounds}
}

func (b *Button) State() ButtonState {
	return b.state
}

// Update advances the button by one frame. A click is a press that starts
// on the button and is released while still over it.
func (b *Button) Update(p Pointer) (Action, bool) {
	hovering := b.Bounds.Contains(p.X, p.Y)
	switch {
	case hovering && p.Down:
		b.state = ButtonPressed
	case hovering:
		b.state = ButtonHover
	default:
		b.state = ButtonIdle
	}
	// A press and release can arrive in the same frame.
	if hovering && p.Pressed {
		b.armed = true
	}

	if p.Released {
		fire := hovering && b.armed
		b.armed = false
		if fire {
			return b.Action, true
		}
	}
	return "", false
}
