package trail

import (
	"encoding/json"
	"fmt"
)

const (
	DefaultStartingMoney  uint32  = 1600
	DefaultWagonCapacity  float64 = 2000
	DefaultStartLocation          = "Independence, Missouri"
	LeaderAge             uint8   = 30
	CompanionAge          uint8   = 25
	FoodPerPersonPerDay   float64 = 2.0
	MilesPerDayNormalPace float64 = 20
)

var DefaultStartDate = Date{Day: 1, Month: 3, Year: 1848}

// Pace is ranked by exertion, with Resting outside the travelling ladder.
type Pace int

const (
	PaceSteady Pace = iota
	PaceStrenuous
	PaceGrueling
	PaceResting
)

var paceNames = [...]string{
	PaceSteady:    "steady",
	PaceStrenuous: "strenuous",
	PaceGrueling:  "grueling",
	PaceResting:   "resting",
}

func AllPaces() []Pace {
	return []Pace{PaceSteady, PaceStrenuous, PaceGrueling, PaceResting}
}

func (p Pace) Valid() bool {
	return p >= PaceSteady && p <= PaceResting
}

func (p Pace) String() string {
	if !p.Valid() {
		return fmt.Sprintf("pace(%d)", int(p))
	}
	return paceNames[p]
}

func (p Pace) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid pace: %d", int(p))
	}
	return []byte(paceNames[p]), nil
}

func (p *Pace) UnmarshalText(text []byte) error {
	parsed, ok := ParsePace(string(text))
	if !ok {
		return fmt.Errorf("unknown pace: %q", text)
	}
	*p = parsed
	return nil
}

func ParsePace(raw string) (Pace, bool) {
	for i, name := range paceNames {
		if name == raw {
			return Pace(i), true
		}
	}
	if raw == "rest" {
		return PaceResting, true
	}
	return 0, false
}

// Rations is ranked from most to least food per person.
type Rations int

const (
	RationsFilling Rations = iota
	RationsMeager
	RationsBareBones
)

var rationNames = [...]string{
	RationsFilling:   "filling",
	RationsMeager:    "meager",
	RationsBareBones: "bare_bones",
}

func AllRations() []Rations {
	return []Rations{RationsFilling, RationsMeager, RationsBareBones}
}

func (r Rations) Valid() bool {
	return r >= RationsFilling && r <= RationsBareBones
}

func (r Rations) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rations(%d)", int(r))
	}
	return rationNames[r]
}

func (r Rations) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rations: %d", int(r))
	}
	return []byte(rationNames[r]), nil
}

func (r *Rations) UnmarshalText(text []byte) error {
	parsed, ok := ParseRations(string(text))
	if !ok {
		return fmt.Errorf("unknown rations: %q", text)
	}
	*r = parsed
	return nil
}

func ParseRations(raw string) (Rations, bool) {
	for i, name := range rationNames {
		if name == raw {
			return Rations(i), true
		}
	}
	switch raw {
	case "bare", "barebones", "bare bones", "bare-bones":
		return RationsBareBones, true
	case "meagre":
		return RationsMeager, true
	}
	return 0, false
}

// JourneyState is the aggregate root of a game. It owns the roster and the
// wagon inventory; the remaining fields are read and written directly by
// travel logic.
type JourneyState struct {
	Money         uint32
	Pace          Pace
	Rations       Rations
	MilesTraveled float64
	Location      string
	Day           int
	Month         int
	Year          int

	party     []PartyMember
	inventory *Inventory
	sink      EventSink
}

func NewJourneyState() *JourneyState {
	return NewJourneyStateWith(DefaultStartingMoney, DefaultWagonCapacity, DefaultStartLocation, DefaultStartDate)
}

func NewJourneyStateWith(money uint32, capacity float64, location string, start Date) *JourneyState {
	start = start.Normalize()
	return &JourneyState{
		Money:     money,
		Pace:      PaceSteady,
		Rations:   RationsFilling,
		Location:  location,
		Day:       start.Day,
		Month:     start.Month,
		Year:      start.Year,
		party:     []PartyMember{},
		inventory: NewInventory(capacity),
	}
}

// SetEventSink routes journey, member and inventory events to sink. Events
// are stamped with the journey date at emission.
func (s *JourneyState) SetEventSink(sink EventSink) {
	s.sink = sink
	s.inventory.SetEventSink(EventSinkFunc(s.emit))
	for i := range s.party {
		s.party[i].sink = s.emit
	}
}

func (s *JourneyState) Inventory() *Inventory {
	return s.inventory
}

func (s *JourneyState) Date() Date {
	return Date{Day: s.Day, Month: s.Month, Year: s.Year}
}

func (s *JourneyState) SetDate(d Date) {
	s.Day, s.Month, s.Year = d.Day, d.Month, d.Year
}

// Setup appends the leader then each companion. It is meant to be called
// once; a second call appends a second roster.
func (s *JourneyState) Setup(leaderName string, companionNames []string) {
	s.appendMember(NewPartyMember(leaderName, LeaderAge, true))
	for _, name := range companionNames {
		s.appendMember(NewPartyMember(name, CompanionAge, false))
	}
	s.emit(Event{
		Kind:  EventPartySetup,
		Attrs: map[string]any{"leader": leaderName, "size": len(companionNames) + 1},
	})
}

func (s *JourneyState) appendMember(m PartyMember) {
	if s.sink != nil {
		m.sink = s.emit
	}
	s.party = append(s.party, m)
}

// Party returns a copy of the full roster, deceased members included.
func (s *JourneyState) Party() []PartyMember {
	out := make([]PartyMember, len(s.party))
	for i, m := range s.party {
		out[i] = detachMember(m)
	}
	return out
}

func (s *JourneyState) LivingMembers() []PartyMember {
	out := make([]PartyMember, 0, len(s.party))
	for _, m := range s.party {
		if m.IsAlive() {
			out = append(out, detachMember(m))
		}
	}
	return out
}

func (s *JourneyState) LivingCount() int {
	count := 0
	for i := range s.party {
		if s.party[i].IsAlive() {
			count++
		}
	}
	return count
}

func (s *JourneyState) PartySize() int {
	return len(s.party)
}

// Member returns the roster entry at index i for a single mutation. The
// pointer must not be kept past the current turn.
func (s *JourneyState) Member(i int) (*PartyMember, bool) {
	if i < 0 || i >= len(s.party) {
		return nil, false
	}
	return &s.party[i], true
}

// MemberByName finds the first roster entry with the given name.
func (s *JourneyState) MemberByName(name string) (*PartyMember, bool) {
	for i := range s.party {
		if s.party[i].Name == name {
			return &s.party[i], true
		}
	}
	return nil, false
}

func (s *JourneyState) Leader() (PartyMember, bool) {
	for _, m := range s.party {
		if m.IsLeader {
			return detachMember(m), true
		}
	}
	return PartyMember{}, false
}

// AdvanceDate moves the calendar forward by days, at most MaxAdvanceDays.
// Zero is a no-op.
func (s *JourneyState) AdvanceDate(days int) {
	if days <= 0 {
		return
	}
	days = min(days, MaxAdvanceDays)
	from := s.Date()
	s.SetDate(from.Advance(days))
	s.emit(Event{
		Kind:  EventDateAdvanced,
		Attrs: map[string]any{"from": from.String(), "days": days},
	})
}

// Clone returns an independent deep copy without an event sink.
func (s *JourneyState) Clone() *JourneyState {
	out := *s
	out.party = s.Party()
	out.inventory = s.inventory.clone()
	out.sink = nil
	return &out
}

func (s *JourneyState) Emit(e Event) {
	s.emit(e)
}

func (s *JourneyState) emit(e Event) {
	if s.sink == nil {
		return
	}
	if e.Date.IsZero() {
		e.Date = s.Date()
	}
	s.sink.Emit(e)
}

func detachMember(m PartyMember) PartyMember {
	m.sink = nil
	m.Diseases = append([]Disease{}, m.Diseases...)
	return m
}

type journeyDocument struct {
	Party         []PartyMember `json:"party"`
	Inventory     *Inventory    `json:"inventory"`
	Money         uint32        `json:"money"`
	Pace          Pace          `json:"pace"`
	Rations       Rations       `json:"rations"`
	MilesTraveled float64       `json:"miles_traveled"`
	Location      string        `json:"location"`
	Day           int           `json:"day"`
	Month         int           `json:"month"`
	Year          int           `json:"year"`
}

func (s *JourneyState) MarshalJSON() ([]byte, error) {
	return json.Marshal(journeyDocument{
		Party:         s.Party(),
		Inventory:     s.inventory,
		Money:         s.Money,
		Pace:          s.Pace,
		Rations:       s.Rations,
		MilesTraveled: s.MilesTraveled,
		Location:      s.Location,
		Day:           s.Day,
		Month:         s.Month,
		Year:          s.Year,
	})
}

func (s *JourneyState) UnmarshalJSON(data []byte) error {
	doc := journeyDocument{Inventory: NewInventory(DefaultWagonCapacity)}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	for i := range doc.Party {
		m := &doc.Party[i]
		if !m.Health.Valid() {
			return fmt.Errorf("party member %q: invalid health", m.Name)
		}
		if m.Diseases == nil {
			m.Diseases = []Disease{}
		}
		for _, d := range m.Diseases {
			if !d.Valid() {
				return fmt.Errorf("party member %q: unknown disease %q", m.Name, d)
			}
		}
	}
	if doc.Party == nil {
		doc.Party = []PartyMember{}
	}
	if doc.Inventory == nil {
		doc.Inventory = NewInventory(DefaultWagonCapacity)
	}
	if !doc.Pace.Valid() || !doc.Rations.Valid() {
		return fmt.Errorf("invalid pace or rations")
	}
	sink := s.sink
	*s = JourneyState{
		Money:         doc.Money,
		Pace:          doc.Pace,
		Rations:       doc.Rations,
		MilesTraveled: doc.MilesTraveled,
		Location:      doc.Location,
		Day:           doc.Day,
		Month:         doc.Month,
		Year:          doc.Year,
		party:         doc.Party,
		inventory:     doc.Inventory,
	}
	if sink != nil {
		s.SetEventSink(sink)
	}
	return nil
}
