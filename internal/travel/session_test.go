package travel

import (
	"errors"
	"strings"
	"testing"

	"github.com/appengine-ltd/wagon-trail/internal/config"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

func newTestSession() *Session {
	js := trail.NewJourneyState()
	js.Setup("Amanda", []string{"Bob", "Cid", "Dee"})
	return NewSession(js, DefaultRules(), NewStore(0), calmDice)
}

func TestStorePriceAppliesMarkup(t *testing.T) {
	price, ok := NewStore(50).Price(trail.ItemOxPair)
	if !ok || price != 60 {
		t.Fatalf("expected $60 ox pair at 50%% markup, got %d ok=%v", price, ok)
	}
	if _, ok := NewStore(0).Price(trail.ItemKind("wagon")); ok {
		t.Fatalf("expected unknown kind to have no price")
	}
}

func TestStoreBuyFailuresLeaveStateUntouched(t *testing.T) {
	js := trail.NewJourneyState()
	st := NewStore(0)

	if _, err := st.Buy(js, trail.ItemOxPair, 100); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := st.Buy(js, trail.ItemOxPair, 5); !errors.Is(err, ErrOverCapacity) {
		t.Fatalf("expected over capacity, got %v", err)
	}
	if _, err := st.Buy(js, trail.ItemFood, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if js.Money != trail.DefaultStartingMoney || !js.Inventory().IsEmpty() {
		t.Fatalf("failed purchases must not change money or wagon, money=%d", js.Money)
	}

	cost, err := st.Buy(js, trail.ItemOxPair, 2)
	if err != nil || cost != 80 {
		t.Fatalf("expected $80 purchase, got cost=%d err=%v", cost, err)
	}
	if js.Money != 1520 || js.Inventory().QuantityOf(trail.ItemOxPair) != 2 {
		t.Fatalf("unexpected state after purchase: money=%d oxen=%d", js.Money, js.Inventory().QuantityOf(trail.ItemOxPair))
	}
}

func TestExecuteBuyFood(t *testing.T) {
	s := newTestSession()
	res := s.Execute("buy 200 pounds of food")
	if !res.Handled || !strings.Contains(res.Message, "Bought 200") {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s.Journey().Money != 1200 || s.Journey().Inventory().QuantityOf(trail.ItemFood) != 200 {
		t.Fatalf("unexpected state: money=%d food=%d", s.Journey().Money, s.Journey().Inventory().QuantityOf(trail.ItemFood))
	}
}

func TestExecuteBuyOverCapacity(t *testing.T) {
	s := newTestSession()
	res := s.Execute("buy 5 oxen")
	if !res.Handled || !strings.Contains(res.Message, "cannot carry") {
		t.Fatalf("expected capacity refusal, got %+v", res)
	}
	if s.Journey().Money != trail.DefaultStartingMoney {
		t.Fatalf("money should be untouched")
	}
}

func TestExecuteBuyRejectsQuantityBeyondUint32(t *testing.T) {
	s := newTestSession()
	res := s.Execute("buy 4294967297 food")
	if !res.Handled || !strings.Contains(res.Message, "more than the store has") {
		t.Fatalf("expected oversized quantity refusal, got %+v", res)
	}
	if s.Journey().Money != trail.DefaultStartingMoney || s.Journey().Inventory().QuantityOf(trail.ItemFood) != 0 {
		t.Fatalf("oversized purchase must not change state: money=%d food=%d", s.Journey().Money, s.Journey().Inventory().QuantityOf(trail.ItemFood))
	}
}

func TestExecuteTravelAndRest(t *testing.T) {
	s := newTestSession()
	s.Journey().Inventory().Add(trail.ItemFood, 500)

	res := s.Execute("travel 3 days")
	if !res.Handled || res.DaysAdvanced != 3 || len(res.Reports) != 3 {
		t.Fatalf("unexpected travel result: %+v", res)
	}
	if s.Journey().MilesTraveled != 60 || s.Journey().Date() != (trail.Date{Day: 4, Month: 3, Year: 1848}) {
		t.Fatalf("unexpected position: %.0f mi on %v", s.Journey().MilesTraveled, s.Journey().Date())
	}

	s.Execute("pace strenuous")
	res = s.Execute("rest 2")
	if res.DaysAdvanced != 2 {
		t.Fatalf("expected 2 rest days, got %d", res.DaysAdvanced)
	}
	if s.Journey().MilesTraveled != 60 {
		t.Fatalf("resting should not add miles, got %.0f", s.Journey().MilesTraveled)
	}
	if s.Journey().Pace != trail.PaceStrenuous {
		t.Fatalf("rest should restore the previous pace, got %s", s.Journey().Pace)
	}
}

func TestExecuteTravelCapsDays(t *testing.T) {
	s := newTestSession()
	s.Journey().Inventory().Add(trail.ItemFood, 2000)
	res := s.Execute("travel 90")
	if res.DaysAdvanced != MaxDaysPerCommand {
		t.Fatalf("expected cap at %d days, got %d", MaxDaysPerCommand, res.DaysAdvanced)
	}
}

func TestExecutePaceAndRations(t *testing.T) {
	s := newTestSession()
	s.Execute("pace grueling")
	s.Execute("rations bare bones")
	if s.Journey().Pace != trail.PaceGrueling || s.Journey().Rations != trail.RationsBareBones {
		t.Fatalf("unexpected settings: pace=%s rations=%s", s.Journey().Pace, s.Journey().Rations)
	}
}

func TestExecuteTreat(t *testing.T) {
	s := newTestSession()
	bob, _ := s.Journey().Member(1)
	bob.Contract(trail.DiseaseCholera)

	res := s.Execute("treat bob")
	if !strings.Contains(res.Message, "No medical supplies") {
		t.Fatalf("expected refusal without supplies, got %q", res.Message)
	}
	s.Journey().Inventory().Add(trail.ItemMedicalSupply, 1)
	res = s.Execute("treat bob")
	if !strings.Contains(res.Message, "Treated Bob") {
		t.Fatalf("expected Bob treated, got %q", res.Message)
	}
	if s.Journey().Party()[1].HasDisease(trail.DiseaseCholera) {
		t.Fatalf("expected cholera cleared")
	}
	res = s.Execute("treat amanda")
	if !strings.Contains(res.Message, "not sick") {
		t.Fatalf("expected healthy refusal, got %q", res.Message)
	}
}

func TestExecuteHostActions(t *testing.T) {
	s := newTestSession()
	res := s.Execute("save slot one")
	if res.Action != ActionSave || res.ActionArg != "slot one" {
		t.Fatalf("unexpected save result: %+v", res)
	}
	if res := s.Execute("quit"); res.Action != ActionMenu {
		t.Fatalf("expected quit to map to menu, got %+v", res)
	}
}

func TestExecuteQueries(t *testing.T) {
	s := newTestSession()
	if res := s.Execute("status"); !strings.Contains(res.Message, "March 1, 1848") {
		t.Fatalf("expected date in status, got %q", res.Message)
	}
	if res := s.Execute("inventory"); res.Message != "The wagon is empty." {
		t.Fatalf("unexpected inventory output %q", res.Message)
	}
	if res := s.Execute("party"); !strings.Contains(res.Message, "Amanda: Good (leader)") {
		t.Fatalf("unexpected party output %q", res.Message)
	}
	if res := s.Execute("help"); !strings.Contains(res.Message, "travel [days]") {
		t.Fatalf("expected help to list usage, got %q", res.Message)
	}
	if res := s.Execute("xyzzy plugh"); res.Handled {
		t.Fatalf("expected gibberish to be unhandled")
	}
}

func TestOutcomePartyLost(t *testing.T) {
	s := newTestSession()
	for i := range s.Journey().PartySize() {
		m, _ := s.Journey().Member(i)
		for range 4 {
			m.Degrade()
		}
	}
	if s.Outcome() != OutcomePartyLost {
		t.Fatalf("expected party lost, got %s", s.Outcome())
	}
	res := s.Execute("travel")
	if res.DaysAdvanced != 0 || !strings.Contains(res.Message, "died") {
		t.Fatalf("expected travel refused after party lost, got %+v", res)
	}
}

func TestOutcomeArrived(t *testing.T) {
	s := newTestSession()
	s.Journey().MilesTraveled = s.Rules().TrailLengthMiles
	if s.Outcome() != OutcomeArrived {
		t.Fatalf("expected arrival, got %s", s.Outcome())
	}
}

func TestNewSessionFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Store.MarkupPercent = 50
	cfg.Travel.MilesPerDay = 10
	s := NewSessionFromConfig(cfg, nil)
	if price, _ := s.Store().Price(trail.ItemFood); price != 3 {
		t.Fatalf("expected marked-up food price $3, got %d", price)
	}
	if s.Rules().MilesPerDay != 10 || s.Journey() == nil {
		t.Fatalf("expected configured rules and a fresh journey, got %+v", s.Rules())
	}
}
