package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/appengine-ltd/wagon-trail/internal/config"
	"github.com/appengine-ltd/wagon-trail/internal/savegame"
	"github.com/appengine-ltd/wagon-trail/internal/scene"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
	"github.com/appengine-ltd/wagon-trail/internal/travel"
)

type AppConfig struct {
	Version   string
	Commit    string
	BuildDate string
	Rules     *config.Config
	Saves     savegame.Store
	Logger    *slog.Logger
}

type App struct {
	cfg AppConfig
}

func NewApp(cfg AppConfig) *App {
	return &App{cfg: cfg}
}

func (a *App) Run() error {
	m := newMenuModel(a.cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// --- Styles (retro green) ---
var (
	green       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	brightGreen = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimGreen    = lipgloss.NewStyle().Foreground(lipgloss.Color("22"))
	border      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warn        = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	panel       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("2")).Padding(0, 1)
)

const (
	partySize      = 5
	maxHistory     = 14
	titleButtonTop = 4
	titleButtonX   = 2
	titleButtonW   = 24
	saveTimeout    = 5 * time.Second
)

var defaultNames = []string{"Amanda", "Bob", "Cid", "Dee", "Eve"}

type menuModel struct {
	cfg     AppConfig
	rules   *config.Config
	machine *scene.Machine
	title   *scene.Title
	session *travel.Session

	mouseDown bool
	width     int

	names    []string
	input    string
	messages []string
	status   string
	busy     bool
}

func newMenuModel(cfg AppConfig) menuModel {
	rules := cfg.Rules
	if rules == nil {
		rules = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return menuModel{
		cfg:     cfg,
		rules:   rules,
		machine: scene.NewMachine(trail.NewLogSink(cfg.Logger)),
		title:   scene.NewTitle(titleButtonX, titleButtonTop, titleButtonW, 0, 1),
	}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

type saveResultMsg struct {
	slot savegame.Slot
	err  error
}

type loadResultMsg struct {
	slot savegame.Slot
	err  error
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.machine.State() {
		case scene.StateTitle:
			return m.updateTitle(msg)
		case scene.StateSetup:
			return m.updateSetup(msg)
		case scene.StateTravel:
			return m.updateTravel(msg)
		case scene.StateGameOver:
			if msg.String() == "enter" || msg.String() == "esc" {
				m.session = nil
				m.machine.TransitionTo(scene.StateTitle)
			}
			return m, nil
		}
	case tea.MouseMsg:
		if m.machine.State() != scene.StateTitle || m.busy {
			return m, nil
		}
		return m.updateTitleMouse(msg)
	case saveResultMsg:
		m.busy = false
		if msg.err != nil {
			m.pushMessage(warn.Render(fmt.Sprintf("Save failed: %v", msg.err)))
			return m, nil
		}
		m.pushMessage(fmt.Sprintf("Saved %q.", msg.slot.Name))
		return m, nil
	case loadResultMsg:
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Load failed: %v", msg.err)
			m.pushMessage(warn.Render(m.status))
			return m, nil
		}
		m.startSession(msg.slot.Journey)
		m.status = ""
		m.pushMessage(fmt.Sprintf("Loaded %q.", msg.slot.Name))
		return m, nil
	}
	return m, nil
}

func (m menuModel) updateTitle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.machine.RequestExit()
		return m, tea.Quit
	case "up", "k":
		m.title.Move(-1)
	case "down", "j":
		m.title.Move(1)
	case "l":
		return m.beginLoad("")
	case "enter", " ":
		if action, ok := m.title.Activate(); ok {
			return m.applyTitleAction(action)
		}
	}
	return m, nil
}

func (m menuModel) updateTitleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := scene.Pointer{X: float64(msg.X), Y: float64(msg.Y)}
	switch msg.Type {
	case tea.MouseLeft:
		p.Pressed = !m.mouseDown
		m.mouseDown = true
	case tea.MouseRelease:
		p.Released = m.mouseDown
		m.mouseDown = false
	case tea.MouseMotion:
	default:
		return m, nil
	}
	p.Down = m.mouseDown
	if action, ok := m.title.Update(p); ok {
		return m.applyTitleAction(action)
	}
	return m, nil
}

func (m menuModel) applyTitleAction(action scene.Action) (tea.Model, tea.Cmd) {
	switch action {
	case scene.ActionTravelTrail:
		if m.session != nil && m.session.Outcome() == travel.OutcomeOngoing {
			m.machine.TransitionTo(scene.StateTravel)
			return m, nil
		}
		m.names = nil
		m.input = ""
		m.status = ""
		m.machine.Apply(action)
	case scene.ActionIntroduction:
		m.status = scene.Introduction
	case scene.ActionOptions:
		m.status = m.optionsText()
	case scene.ActionQuit:
		m.machine.Apply(action)
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) optionsText() string {
	r := m.rules
	return fmt.Sprintf("Starting money %s, wagon holds %.0f lb, store markup %d%%, seed %d, saves: %s (%s)",
		trail.FormatMoney(r.Journey.StartingMoney),
		r.Journey.WagonCapacity,
		r.Store.MarkupPercent,
		r.Travel.Seed,
		r.Saves.Backend,
		r.Saves.Path,
	)
}

func (m menuModel) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.machine.TransitionTo(scene.StateTitle)
		return m, nil
	case tea.KeyBackspace:
		m.input = dropLastRune(m.input)
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input)
		if name == "" {
			name = defaultNames[len(m.names)]
		}
		m.names = append(m.names, name)
		m.input = ""
		if len(m.names) < partySize {
			return m, nil
		}
		js := m.rules.NewJourney()
		js.Setup(m.names[0], m.names[1:])
		m.messages = nil
		m.startSession(js)
		m.pushMessage(fmt.Sprintf("You have %s. Visit the store with buy <item> [qty], then travel. Type help for commands.", trail.FormatMoney(js.Money)))
		return m, nil
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m *menuModel) startSession(js *trail.JourneyState) {
	m.session = travel.NewSessionFromConfig(m.rules, js)
	js.SetEventSink(trail.NewLogSink(m.cfg.Logger))
	m.machine.TransitionTo(scene.StateTravel)
}

func (m menuModel) updateTravel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.machine.TransitionTo(scene.StateTitle)
		return m, nil
	case tea.KeyBackspace:
		m.input = dropLastRune(m.input)
		return m, nil
	case tea.KeyEnter:
		return m.submitInput()
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m menuModel) submitInput() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input)
	m.input = ""
	if raw == "" || m.session == nil {
		return m, nil
	}
	m.pushMessage(dimGreen.Render("> " + raw))

	res := m.session.Execute(raw)
	switch res.Action {
	case travel.ActionSave:
		return m.beginSave(res.ActionArg)
	case travel.ActionLoad:
		return m.beginLoad(res.ActionArg)
	case travel.ActionMenu:
		m.machine.TransitionTo(scene.StateTitle)
		return m, nil
	}
	if !res.Handled {
		m.pushMessage("I don't understand that. Type help for commands.")
		return m, nil
	}
	for _, line := range strings.Split(res.Message, "\n") {
		m.pushMessage(line)
	}
	if m.session.Outcome() != travel.OutcomeOngoing {
		m.machine.TransitionTo(scene.StateGameOver)
	}
	return m, nil
}

func (m menuModel) beginSave(name string) (tea.Model, tea.Cmd) {
	if m.cfg.Saves == nil {
		m.pushMessage(warn.Render("Saving is not configured."))
		return m, nil
	}
	m.busy = true
	return m, saveCmd(m.cfg.Saves, savegame.Slot{Name: name, Journey: m.session.Journey().Clone()})
}

func (m menuModel) beginLoad(ref string) (tea.Model, tea.Cmd) {
	if m.cfg.Saves == nil {
		m.status = "Saving is not configured."
		return m, nil
	}
	m.busy = true
	return m, loadCmd(m.cfg.Saves, ref)
}

func saveCmd(store savegame.Store, slot savegame.Slot) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		saved, err := store.Save(ctx, slot)
		return saveResultMsg{slot: saved, err: err}
	}
}

func loadCmd(store savegame.Store, ref string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		slot, err := savegame.Resolve(ctx, store, ref)
		if errors.Is(err, savegame.ErrNotFound) {
			err = errors.New("no saved journey by that name")
		}
		return loadResultMsg{slot: slot, err: err}
	}
}

func (m *menuModel) pushMessage(line string) {
	m.messages = append(m.messages, line)
	if len(m.messages) > maxHistory {
		m.messages = m.messages[len(m.messages)-maxHistory:]
	}
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
