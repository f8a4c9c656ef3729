package travel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/appengine-ltd/wagon-trail/internal/config"
	"github.com/appengine-ltd/wagon-trail/internal/parser"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

// MaxDaysPerCommand caps how far a single travel or rest command runs.
const MaxDaysPerCommand = 30

type Outcome string

const (
	OutcomeOngoing   Outcome = "ongoing"
	OutcomePartyLost Outcome = "party_lost"
	OutcomeArrived   Outcome = "arrived"
)

// Action names a command the host has to carry out, such as saving or
// leaving to the title screen.
type Action string

const (
	ActionNone Action = ""
	ActionSave Action = "save"
	ActionLoad Action = "load"
	ActionMenu Action = "menu"
)

type CommandResult struct {
	Handled      bool        `json:"handled"`
	Message      string      `json:"message"`
	DaysAdvanced int         `json:"days_advanced"`
	Action       Action      `json:"action,omitempty"`
	ActionArg    string      `json:"action_arg,omitempty"`
	Reports      []DayReport `json:"reports,omitempty"`
}

// Session binds a journey to the rules, store, parser and dice that drive
// it. It is not safe for concurrent use.
type Session struct {
	journey    *trail.JourneyState
	rules      Rules
	store      Store
	parser     *parser.Parser
	rng        Roller
	lastEntity string
}

func NewSession(journey *trail.JourneyState, rules Rules, store Store, rng Roller) *Session {
	if journey == nil {
		journey = trail.NewJourneyState()
	}
	if rng == nil {
		rng = NewRoller(0)
	}
	return &Session{
		journey: journey,
		rules:   rules,
		store:   store,
		parser:  parser.New(),
		rng:     rng,
	}
}

// NewSessionFromConfig wires rules, store and dice from a loaded rules file.
func NewSessionFromConfig(cfg *config.Config, journey *trail.JourneyState) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return NewSession(journey, RulesFromConfig(cfg.Travel), NewStore(cfg.Store.MarkupPercent), NewRoller(cfg.Travel.Seed))
}

func (s *Session) Journey() *trail.JourneyState {
	return s.journey
}

// Replace swaps in a loaded journey, carrying over the event sink.
func (s *Session) Replace(journey *trail.JourneyState, sink trail.EventSink) {
	if journey == nil {
		return
	}
	journey.SetEventSink(sink)
	s.journey = journey
	s.lastEntity = ""
}

func (s *Session) Rules() Rules {
	return s.rules
}

func (s *Session) Store() Store {
	return s.store
}

func (s *Session) Commands() []parser.CommandDef {
	return s.parser.Commands()
}

func (s *Session) Outcome() Outcome {
	if s.journey.PartySize() > 0 && s.journey.LivingCount() == 0 {
		return OutcomePartyLost
	}
	if s.rules.TrailLengthMiles > 0 && s.journey.MilesTraveled >= s.rules.TrailLengthMiles {
		return OutcomeArrived
	}
	return OutcomeOngoing
}

// ParseContext lists the names the parser may resolve arguments against.
func (s *Session) ParseContext() parser.ParseContext {
	ctx := parser.ParseContext{LastEntity: s.lastEntity}
	for _, entry := range trail.ItemCatalog() {
		ctx.Store = append(ctx.Store, strings.ToLower(entry.Label))
	}
	for _, item := range s.journey.Inventory().ListAll() {
		ctx.Inventory = append(ctx.Inventory, strings.ToLower(item.Kind.Label()))
	}
	for _, m := range s.journey.Party() {
		ctx.Party = append(ctx.Party, m.Name)
	}
	return ctx
}

func (s *Session) Execute(raw string) CommandResult {
	intent := s.parser.Parse(s.ParseContext(), raw)
	if intent.Clarify != nil {
		return CommandResult{Handled: intent.Verb != "", Message: clarifyMessage(intent.Clarify)}
	}
	if intent.Verb == "" {
		return CommandResult{Handled: false}
	}

	switch intent.Verb {
	case "help":
		return s.help()
	case "status":
		return CommandResult{Handled: true, Message: s.StatusLine()}
	case "inventory":
		return s.inventory()
	case "party":
		return s.party()
	case "buy":
		return s.buy(intent)
	case "pace":
		return s.setPace(intent)
	case "rations":
		return s.setRations(intent)
	case "travel":
		return s.travel(daysFrom(intent.Quantity), false)
	case "rest":
		return s.travel(daysFrom(intent.Quantity), true)
	case "treat":
		return s.treat(intent)
	case "save":
		return CommandResult{Handled: true, Action: ActionSave, ActionArg: strings.Join(intent.Args, " ")}
	case "load":
		return CommandResult{Handled: true, Action: ActionLoad, ActionArg: strings.Join(intent.Args, " ")}
	case "menu":
		return CommandResult{Handled: true, Action: ActionMenu}
	default:
		return CommandResult{Handled: false}
	}
}

func (s *Session) help() CommandResult {
	lines := make([]string, 0, len(s.parser.Commands())+1)
	lines = append(lines, "Commands:")
	for _, c := range s.parser.Commands() {
		lines = append(lines, fmt.Sprintf("  %-42s %s", c.Usage, c.Summary))
	}
	return CommandResult{Handled: true, Message: strings.Join(lines, "\n")}
}

// StatusLine summarises date, place and supplies on one line.
func (s *Session) StatusLine() string {
	js := s.journey
	return fmt.Sprintf("%s | %s | %.0f mi | %s | pace %s | rations %s | food %d lb | %d/%d alive",
		js.Date().String(),
		js.Location,
		js.MilesTraveled,
		trail.FormatMoney(js.Money),
		js.Pace.String(),
		js.Rations.String(),
		js.Inventory().QuantityOf(trail.ItemFood),
		js.LivingCount(),
		js.PartySize(),
	)
}

func (s *Session) inventory() CommandResult {
	inv := s.journey.Inventory()
	if inv.IsEmpty() {
		return CommandResult{Handled: true, Message: "The wagon is empty."}
	}
	lines := make([]string, 0, 10)
	for _, item := range inv.ListAll() {
		lines = append(lines, fmt.Sprintf("%-16s x%-6d %8.1f lb", item.Kind.Label(), item.Quantity, item.TotalWeight()))
	}
	info := inv.CapacityInfo()
	load := fmt.Sprintf("Load: %.1f / %.0f lb (%.0f%%)", info.Current, info.Max, info.PercentFull)
	if inv.Overloaded() {
		load += " OVERLOADED"
	}
	lines = append(lines, load)
	return CommandResult{Handled: true, Message: strings.Join(lines, "\n")}
}

func (s *Session) party() CommandResult {
	members := s.journey.Party()
	if len(members) == 0 {
		return CommandResult{Handled: true, Message: "No party has been set up."}
	}
	lines := make([]string, 0, len(members))
	for _, m := range members {
		line := fmt.Sprintf("%s: %s", m.Name, m.Health.Label())
		if m.IsLeader {
			line += " (leader)"
		}
		if len(m.Diseases) > 0 {
			names := make([]string, 0, len(m.Diseases))
			for _, d := range m.Diseases {
				names = append(names, d.Label())
			}
			line += ", suffering from " + strings.Join(names, ", ")
		}
		lines = append(lines, line)
	}
	return CommandResult{Handled: true, Message: strings.Join(lines, "\n")}
}

func (s *Session) buy(intent parser.Intent) CommandResult {
	kind, ok := trail.ParseItemKind(firstArg(intent))
	if !ok {
		return CommandResult{Handled: true, Message: fmt.Sprintf("The store doesn't sell %q.", firstArg(intent))}
	}
	qty := uint32(1)
	if intent.Quantity != nil {
		if intent.Quantity.N <= 0 {
			return CommandResult{Handled: true, Message: "Buy how many?"}
		}
		if uint64(intent.Quantity.N) > math.MaxUint32 {
			return CommandResult{Handled: true, Message: "That's more than the store has."}
		}
		qty = uint32(intent.Quantity.N)
	}
	s.lastEntity = strings.ToLower(kind.Label())
	cost, err := s.store.Buy(s.journey, kind, qty)
	switch {
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrOverCapacity):
		return CommandResult{Handled: true, Message: capitalise(err.Error()) + "."}
	case err != nil:
		return CommandResult{Handled: true, Message: err.Error()}
	}
	return CommandResult{
		Handled: true,
		Message: fmt.Sprintf("Bought %d x %s for %s. %s left.", qty, kind.Label(), trail.FormatMoney(cost), trail.FormatMoney(s.journey.Money)),
	}
}

func (s *Session) setPace(intent parser.Intent) CommandResult {
	pace, ok := trail.ParsePace(firstArg(intent))
	if !ok {
		return CommandResult{Handled: true, Message: "Usage: pace <steady|strenuous|grueling|resting>"}
	}
	s.journey.Pace = pace
	return CommandResult{Handled: true, Message: fmt.Sprintf("Pace set to %s.", pace.String())}
}

func (s *Session) setRations(intent parser.Intent) CommandResult {
	rations, ok := trail.ParseRations(firstArg(intent))
	if !ok {
		return CommandResult{Handled: true, Message: "Usage: rations <filling|meager|bare_bones>"}
	}
	s.journey.Rations = rations
	return CommandResult{Handled: true, Message: fmt.Sprintf("Rations set to %s.", rations.String())}
}

// travel runs up to days trail days. Resting swaps the pace for the
// duration and restores it afterwards.
func (s *Session) travel(days int, rest bool) CommandResult {
	if s.journey.PartySize() == 0 {
		return CommandResult{Handled: true, Message: "Set up a party before leaving."}
	}
	if out := s.Outcome(); out != OutcomeOngoing {
		return CommandResult{Handled: true, Message: outcomeMessage(out)}
	}
	previous := s.journey.Pace
	if rest {
		s.journey.Pace = trail.PaceResting
		defer func() { s.journey.Pace = previous }()
	}

	result := CommandResult{Handled: true}
	lines := make([]string, 0, days+1)
	for range days {
		report := s.rules.AdvanceDay(s.journey, s.rng)
		result.Reports = append(result.Reports, report)
		result.DaysAdvanced++
		lines = append(lines, DescribeDay(report))
		if out := s.Outcome(); out != OutcomeOngoing {
			lines = append(lines, outcomeMessage(out))
			break
		}
	}
	result.Message = strings.Join(lines, "\n")
	return result
}

func (s *Session) treat(intent parser.Intent) CommandResult {
	target := firstArg(intent)
	member := s.findMember(target)
	if member == nil {
		return CommandResult{Handled: true, Message: fmt.Sprintf("Nobody named %q in the party.", target)}
	}
	s.lastEntity = member.Name
	if !member.IsAlive() {
		return CommandResult{Handled: true, Message: fmt.Sprintf("%s is beyond help.", member.Name)}
	}
	if len(member.Diseases) == 0 {
		return CommandResult{Handled: true, Message: fmt.Sprintf("%s is not sick.", member.Name)}
	}
	if !s.journey.Inventory().UseMedicalSupply() {
		return CommandResult{Handled: true, Message: "No medical supplies left."}
	}
	d := member.Diseases[0]
	member.Recover(d)
	return CommandResult{Handled: true, Message: fmt.Sprintf("Treated %s for %s.", member.Name, d.Label())}
}

func (s *Session) findMember(name string) *trail.PartyMember {
	want := parser.Normalise(name)
	for i := 0; i < s.journey.PartySize(); i++ {
		m, _ := s.journey.Member(i)
		if parser.Normalise(m.Name) == want {
			return m
		}
	}
	return nil
}

// DescribeDay renders a day report as a single line of prose.
func DescribeDay(r DayReport) string {
	parts := []string{fmt.Sprintf("%s: %.0f miles, %d lb of food eaten", r.Date.String(), r.Miles, r.FoodEaten)}
	if r.Starving {
		parts = append(parts, "the party is starving")
	}
	for _, c := range r.Contracted {
		parts = append(parts, fmt.Sprintf("%s has %s", c.Member, c.Disease.Label()))
	}
	for _, c := range r.Treated {
		parts = append(parts, fmt.Sprintf("%s was treated for %s", c.Member, c.Disease.Label()))
	}
	for _, name := range r.Died {
		parts = append(parts, fmt.Sprintf("%s has died", name))
	}
	return strings.Join(parts, "; ") + "."
}

func outcomeMessage(o Outcome) string {
	switch o {
	case OutcomePartyLost:
		return "Everyone in your party has died."
	case OutcomeArrived:
		return "You have reached the end of the trail."
	default:
		return ""
	}
}

func clarifyMessage(q *parser.ClarifyQuestion) string {
	if len(q.Options) == 0 {
		return q.Prompt
	}
	opts := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if cmd := parser.IntentToCommandString(opt); cmd != "" {
			opts = append(opts, cmd)
		}
	}
	return q.Prompt + " " + strings.Join(opts, " | ")
}

func daysFrom(q *parser.Quantity) int {
	if q == nil || q.N <= 0 {
		return 1
	}
	return min(q.N, MaxDaysPerCommand)
}

func firstArg(intent parser.Intent) string {
	if len(intent.Args) == 0 {
		return ""
	}
	return intent.Args[0]
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
