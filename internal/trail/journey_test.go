package trail

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewJourneyStateDefaults(t *testing.T) {
	s := NewJourneyState()
	if s.Money != 1600 || s.Pace != PaceSteady || s.Rations != RationsFilling {
		t.Fatalf("unexpected defaults: money=%d pace=%s rations=%s", s.Money, s.Pace, s.Rations)
	}
	if s.Location != "Independence, Missouri" {
		t.Fatalf("unexpected location %q", s.Location)
	}
	if got := s.Date(); got != (Date{Day: 1, Month: 3, Year: 1848}) {
		t.Fatalf("unexpected start date %+v", got)
	}
	if s.MilesTraveled != 0 || s.PartySize() != 0 || !s.Inventory().IsEmpty() {
		t.Fatalf("expected empty journey")
	}
	if s.Inventory().MaxCapacity() != 2000 {
		t.Fatalf("expected 2000 lb wagon, got %.0f", s.Inventory().MaxCapacity())
	}
}

func TestSetupBuildsRoster(t *testing.T) {
	s := NewJourneyState()
	s.Setup("Amanda", []string{"Bob", "Cid"})

	party := s.Party()
	if len(party) != 3 {
		t.Fatalf("expected 3 members, got %d", len(party))
	}
	if party[0].Name != "Amanda" || party[0].Age != 30 || !party[0].IsLeader {
		t.Fatalf("unexpected leader: %+v", party[0])
	}
	for i, name := range []string{"Bob", "Cid"} {
		m := party[i+1]
		if m.Name != name || m.Age != 25 || m.IsLeader {
			t.Fatalf("unexpected companion %d: %+v", i, m)
		}
		if m.Health != HealthGood || len(m.Diseases) != 0 {
			t.Fatalf("expected healthy companion: %+v", m)
		}
	}
	if s.LivingCount() != 3 {
		t.Fatalf("expected 3 living, got %d", s.LivingCount())
	}
}

func TestSetupWithNoCompanions(t *testing.T) {
	s := NewJourneyState()
	s.Setup("Solo", nil)
	if s.PartySize() != 1 || s.LivingCount() != 1 {
		t.Fatalf("expected one-person party, got %d", s.PartySize())
	}
}

func TestSetupTwiceDuplicatesRoster(t *testing.T) {
	s := NewJourneyState()
	s.Setup("Amanda", []string{"Bob"})
	s.Setup("Amanda", []string{"Bob"})
	if s.PartySize() != 4 {
		t.Fatalf("expected second setup to append, got %d members", s.PartySize())
	}
}

func TestLivingCountFiltersDeceasedWithoutRemoving(t *testing.T) {
	s := NewJourneyState()
	s.Setup("Amanda", []string{"Bob", "Cid"})

	bob, ok := s.Member(1)
	if !ok {
		t.Fatalf("expected member 1")
	}
	for range 3 {
		bob.Degrade()
	}
	if s.LivingCount() != 3 {
		t.Fatalf("expected very poor member still alive")
	}
	bob.Degrade()
	if s.LivingCount() != 2 {
		t.Fatalf("expected 2 living, got %d", s.LivingCount())
	}
	if s.PartySize() != 3 {
		t.Fatalf("expected deceased member kept in roster")
	}
	for _, m := range s.LivingMembers() {
		if m.Name == "Bob" {
			t.Fatalf("expected Bob filtered from living members")
		}
	}
	if _, ok := s.Member(3); ok {
		t.Fatalf("expected out of range member lookup to fail")
	}
}

func TestPartyReturnsCopies(t *testing.T) {
	s := NewJourneyState()
	s.Setup("Amanda", nil)
	party := s.Party()
	party[0].Health = HealthDeceased
	party[0].Diseases = append(party[0].Diseases, DiseaseFever)

	if s.LivingCount() != 1 {
		t.Fatalf("expected roster unaffected by copy mutation")
	}
	if m, _ := s.Member(0); len(m.Diseases) != 0 {
		t.Fatalf("expected diseases unaffected by copy mutation")
	}
}

func TestJourneyEventsStampedWithDate(t *testing.T) {
	var events []Event
	s := NewJourneyState()
	s.SetEventSink(EventSinkFunc(func(e Event) { events = append(events, e) }))
	s.Setup("Amanda", nil)
	m, _ := s.Member(0)
	m.Contract(DiseaseMeasles)
	s.AdvanceDate(2)

	kinds := make([]EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
		if e.Date.IsZero() {
			t.Fatalf("expected event %s to carry a date", e.Kind)
		}
	}
	want := []EventKind{EventPartySetup, EventMemberContracted, EventMemberHealthChanged, EventDateAdvanced}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("events=%v want=%v", kinds, want)
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := NewJourneyState()
	s.Setup("Amanda", []string{"Bob", "Cid", "Dee"})
	s.Inventory().Add(ItemFood, 200)

	if !s.Inventory().UseFood(100) {
		t.Fatalf("expected to eat 100 lb")
	}
	if got := s.Inventory().QuantityOf(ItemFood); got != 100 {
		t.Fatalf("expected 100 food left, got %d", got)
	}
	s.AdvanceDate(10)
	if got := s.Date(); got != (Date{Day: 11, Month: 3, Year: 1848}) {
		t.Fatalf("unexpected date after 10 days: %+v", got)
	}
	if s.LivingCount() != 4 {
		t.Fatalf("expected 4 living, got %d", s.LivingCount())
	}
}

func TestJourneyJSONRoundTrip(t *testing.T) {
	s := NewJourneyState()
	s.Setup("Amanda", []string{"Bob"})
	s.Inventory().Add(ItemFood, 300)
	s.Inventory().Add(ItemOxPair, 3)
	s.Money = 420
	s.Pace = PaceGrueling
	s.Rations = RationsBareBones
	s.MilesTraveled = 312.5
	s.Location = "Fort Kearney"
	s.AdvanceDate(45)
	bob, _ := s.Member(1)
	bob.Contract(DiseaseSnakebite)
	bob.Contract(DiseaseExhaustion)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored JourneyState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(restored.Party(), s.Party()) {
		t.Fatalf("party mismatch:\n got=%+v\nwant=%+v", restored.Party(), s.Party())
	}
	if !reflect.DeepEqual(restored.Inventory().ListAll(), s.Inventory().ListAll()) {
		t.Fatalf("inventory mismatch")
	}
	if restored.Money != 420 || restored.Pace != PaceGrueling || restored.Rations != RationsBareBones ||
		restored.MilesTraveled != 312.5 || restored.Location != "Fort Kearney" || restored.Date() != s.Date() {
		t.Fatalf("field mismatch: %s", data)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	if doc["pace"] != "grueling" || doc["rations"] != "bare_bones" {
		t.Fatalf("expected named enums, got pace=%v rations=%v", doc["pace"], doc["rations"])
	}
}

func TestJourneyUnmarshalRejectsUnknownDisease(t *testing.T) {
	data := []byte(`{"party":[{"name":"A","health":"good","diseases":["plague"],"is_leader":true,"age":30}],"pace":"steady","rations":"filling","day":1,"month":3,"year":1848}`)
	var s JourneyState
	if err := json.Unmarshal(data, &s); err == nil {
		t.Fatalf("expected unknown disease to fail")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewJourneyState()
	s.Setup("Amanda", nil)
	s.Inventory().Add(ItemFood, 10)

	c := s.Clone()
	c.Inventory().Add(ItemFood, 5)
	m, _ := c.Member(0)
	m.Degrade()

	if s.Inventory().QuantityOf(ItemFood) != 10 {
		t.Fatalf("clone shares inventory")
	}
	if orig, _ := s.Member(0); orig.Health != HealthGood {
		t.Fatalf("clone shares roster")
	}
}

func TestParsePaceAndRations(t *testing.T) {
	if p, ok := ParsePace("strenuous"); !ok || p != PaceStrenuous {
		t.Fatalf("parse strenuous: %v %v", p, ok)
	}
	if _, ok := ParsePace("gallop"); ok {
		t.Fatalf("expected unknown pace to fail")
	}
	if r, ok := ParseRations("bare-bones"); !ok || r != RationsBareBones {
		t.Fatalf("parse bare-bones: %v %v", r, ok)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatMoney(1600); got != "$1600" {
		t.Fatalf("FormatMoney=%q", got)
	}
	if got := Percentage(150, 100); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := Percentage(5, 0); got != 0 {
		t.Fatalf("expected zero for empty max, got %v", got)
	}
}
