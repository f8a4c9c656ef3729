package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/appengine-ltd/wagon-trail/internal/scene"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
	"github.com/appengine-ltd/wagon-trail/internal/travel"
)

const rule = "----------------------------------------"

func (m menuModel) View() string {
	switch m.machine.State() {
	case scene.StateSetup:
		return m.setupView()
	case scene.StateTravel:
		return m.travelView()
	case scene.StateGameOver:
		return m.gameOverView()
	default:
		return m.titleView()
	}
}

// titleView keeps the buttons on the rows the title scene hit-tests.
func (m menuModel) titleView() string {
	var b strings.Builder
	b.WriteString(brightGreen.Render("THE WAGON TRAIL") + "\n")
	b.WriteString(dimGreen.Render(fmt.Sprintf("v%s  (%s)  %s", m.cfg.Version, m.cfg.Commit, m.cfg.BuildDate)) + "\n")
	b.WriteString(border.Render(rule) + "\n\n")

	for i, button := range m.title.Buttons {
		cursor := "  "
		line := green.Render(button.Label)
		if i == m.title.Selected() || button.State() != scene.ButtonIdle {
			cursor = "> "
			line = brightGreen.Render(button.Label)
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n" + border.Render(rule) + "\n")
	b.WriteString(dimGreen.Render("↑/↓ to move, Enter or click to select, l to load the last save, q to quit") + "\n")
	if m.status != "" {
		b.WriteString("\n" + green.Render(m.status) + "\n")
	}
	return b.String()
}

func (m menuModel) setupView() string {
	var b strings.Builder
	b.WriteString(brightGreen.Render("FORM YOUR PARTY") + "\n")
	b.WriteString(border.Render(rule) + "\n\n")
	for i, name := range m.names {
		b.WriteString(green.Render(fmt.Sprintf("%d. %s", i+1, name)) + "\n")
	}
	prompt := "Name of the party leader"
	if len(m.names) > 0 {
		prompt = fmt.Sprintf("Name of companion %d", len(m.names))
	}
	hint := defaultNames[min(len(m.names), len(defaultNames)-1)]
	b.WriteString("\n" + green.Render(prompt) + dimGreen.Render(fmt.Sprintf(" [%s]", hint)) + ": " + brightGreen.Render(m.input+"_") + "\n")
	b.WriteString("\n" + dimGreen.Render("Enter to confirm, Esc to return to the title") + "\n")
	return b.String()
}

func (m menuModel) travelView() string {
	if m.session == nil {
		return m.titleView()
	}
	js := m.session.Journey()
	rules := m.session.Rules()

	var b strings.Builder
	b.WriteString(brightGreen.Render("ON THE TRAIL") + "  " + dimGreen.Render(m.session.StatusLine()) + "\n")

	progress := 0.0
	if rules.TrailLengthMiles > 0 {
		progress = trail.Percentage(js.MilesTraveled, rules.TrailLengthMiles)
	}
	width := m.width
	if width <= 0 {
		width = 60
	}
	b.WriteString(renderTrailANSI(progress, width-4, 3))
	b.WriteString(dimGreen.Render(fmt.Sprintf("%.0f of %.0f miles, %.0f to go", js.MilesTraveled, rules.TrailLengthMiles, rules.RemainingMiles(js))) + "\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panel.Render(partyPanel(js)), " ", panel.Render(wagonPanel(js))) + "\n")

	for _, line := range m.messages {
		b.WriteString(green.Render(line) + "\n")
	}
	b.WriteString("\n" + brightGreen.Render("> "+m.input+"_") + "\n")
	if m.busy {
		b.WriteString(dimGreen.Render("Working…") + "\n")
	}
	return b.String()
}

func partyPanel(js *trail.JourneyState) string {
	lines := []string{brightGreen.Render("Party")}
	for _, member := range js.Party() {
		line := fmt.Sprintf("%-10s %s", member.Name, member.Health.Label())
		if len(member.Diseases) > 0 {
			line += " *"
		}
		if !member.IsAlive() {
			lines = append(lines, dimGreen.Render(line))
			continue
		}
		lines = append(lines, green.Render(line))
	}
	return strings.Join(lines, "\n")
}

func wagonPanel(js *trail.JourneyState) string {
	inv := js.Inventory()
	lines := []string{brightGreen.Render("Wagon")}
	for _, item := range inv.ListAll() {
		lines = append(lines, green.Render(fmt.Sprintf("%-14s %6d", item.Kind.Label(), item.Quantity)))
	}
	info := inv.CapacityInfo()
	load := fmt.Sprintf("%.0f/%.0f lb", info.Current, info.Max)
	if inv.Overloaded() {
		lines = append(lines, warn.Render(load+" overloaded"))
	} else {
		lines = append(lines, dimGreen.Render(load))
	}
	return strings.Join(lines, "\n")
}

func (m menuModel) gameOverView() string {
	var b strings.Builder
	headline := "THE JOURNEY IS OVER"
	if m.session != nil && m.session.Outcome() == travel.OutcomeArrived {
		headline = "YOU HAVE REACHED OREGON"
	}
	b.WriteString(brightGreen.Render(headline) + "\n")
	b.WriteString(border.Render(rule) + "\n")
	for _, line := range m.messages {
		b.WriteString(green.Render(line) + "\n")
	}
	b.WriteString("\n" + dimGreen.Render("Enter to return to the title") + "\n")
	return b.String()
}
