package trail

import (
	"encoding/json"
	"math"
	"testing"
)

func TestAddThenRemoveLeavesInventoryEmpty(t *testing.T) {
	for _, kind := range AllItemKinds() {
		for _, qty := range []uint32{0, 1, 7, 250} {
			inv := NewInventory(DefaultWagonCapacity)
			inv.Add(kind, qty)
			if !inv.Remove(kind, qty) {
				t.Fatalf("remove %d %s after add failed", qty, kind)
			}
			if !inv.IsEmpty() {
				t.Fatalf("expected empty inventory after add/remove %d %s, got %+v", qty, kind, inv.ListAll())
			}
			if got := inv.QuantityOf(kind); got != 0 {
				t.Fatalf("expected zero quantity for %s, got %d", kind, got)
			}
		}
	}
}

func TestAddUsesCatalogDefaultsAndFreezesThem(t *testing.T) {
	inv := NewInventory(DefaultWagonCapacity)
	inv.Add(ItemOxPair, 1)
	inv.Add(ItemOxPair, 2)

	items := inv.ListAll()
	if len(items) != 1 {
		t.Fatalf("expected one record, got %d", len(items))
	}
	got := items[0]
	if got.Quantity != 3 || got.WeightPerUnit != 500 || got.CostPerUnit != 40 {
		t.Fatalf("unexpected ox pair record: %+v", got)
	}
	if got.TotalWeight() != 1500 || got.TotalCost() != 120 {
		t.Fatalf("unexpected totals: weight=%.1f cost=%d", got.TotalWeight(), got.TotalCost())
	}
}

func TestRemoveInsufficientIsNoOp(t *testing.T) {
	inv := NewInventory(DefaultWagonCapacity)
	inv.Add(ItemAmmunition, 10)

	if inv.Remove(ItemAmmunition, 11) {
		t.Fatalf("expected remove of 11 from 10 to fail")
	}
	if got := inv.QuantityOf(ItemAmmunition); got != 10 {
		t.Fatalf("expected quantity untouched, got %d", got)
	}
	if inv.Remove(ItemSpareAxle, 1) {
		t.Fatalf("expected remove of unstocked kind to fail")
	}
}

func TestTotalWeightAndCapacityInfo(t *testing.T) {
	inv := NewInventory(1000)
	inv.Add(ItemFood, 200)
	inv.Add(ItemAmmunition, 50)
	inv.Add(ItemSpareWheel, 2)

	want := 200*1.0 + 50*0.1 + 2*15.0
	if got := inv.TotalWeight(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("total weight=%.4f want=%.4f", got, want)
	}
	info := inv.CapacityInfo()
	if info.Max != 1000 || math.Abs(info.Current-want) > 1e-9 {
		t.Fatalf("unexpected capacity info: %+v", info)
	}
	if math.Abs(info.PercentFull-100*want/1000) > 1e-9 {
		t.Fatalf("percent=%.4f want=%.4f", info.PercentFull, 100*want/1000)
	}
}

func TestCanAddIsPureAndBoundedByCapacity(t *testing.T) {
	tests := []struct {
		name string
		kind ItemKind
		qty  uint32
		want bool
	}{
		{name: "exactly fills", kind: ItemFood, qty: 100, want: true},
		{name: "one over", kind: ItemFood, qty: 101, want: false},
		{name: "zero quantity", kind: ItemOxPair, qty: 0, want: true},
		{name: "heavy item", kind: ItemOxPair, qty: 1, want: false},
		{name: "unknown kind", kind: ItemKind("wagon"), qty: 1, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := NewInventory(200)
			inv.Add(ItemFood, 100)
			before := inv.ListAll()
			if got := inv.CanAdd(tc.kind, tc.qty); got != tc.want {
				t.Fatalf("CanAdd(%s, %d)=%v want %v", tc.kind, tc.qty, got, tc.want)
			}
			after := inv.ListAll()
			if len(before) != len(after) || before[0] != after[0] {
				t.Fatalf("CanAdd mutated inventory: before=%+v after=%+v", before, after)
			}
		})
	}
}

func TestAddAllowsOverloadAndFlagsIt(t *testing.T) {
	var events []Event
	inv := NewInventory(100)
	inv.SetEventSink(EventSinkFunc(func(e Event) { events = append(events, e) }))

	inv.Add(ItemFood, 150)

	if got := inv.QuantityOf(ItemFood); got != 150 {
		t.Fatalf("expected unchecked add to stock 150, got %d", got)
	}
	if !inv.Overloaded() {
		t.Fatalf("expected inventory to report overload")
	}
	if len(events) != 1 || events[0].Kind != EventInventoryOverloaded {
		t.Fatalf("expected one overload event, got %+v", events)
	}
	if inv.TryAdd(ItemFood, 1) {
		t.Fatalf("expected TryAdd to reject while overloaded")
	}
}

func TestUseFoodRoundsUpToWholeUnits(t *testing.T) {
	inv := NewInventory(DefaultWagonCapacity)
	inv.Add(ItemFood, 10)

	if !inv.UseFood(2.1) {
		t.Fatalf("expected food use to succeed")
	}
	if got := inv.QuantityOf(ItemFood); got != 7 {
		t.Fatalf("expected 7 food after eating 2.1 lb, got %d", got)
	}
	if inv.UseFood(7.5) {
		t.Fatalf("expected 8 units from 7 to fail")
	}
	if got := inv.QuantityOf(ItemFood); got != 7 {
		t.Fatalf("expected failed use to leave 7, got %d", got)
	}
}

func TestUseFoodRejectsNaNAndNegative(t *testing.T) {
	inv := NewInventory(DefaultWagonCapacity)
	inv.Add(ItemFood, 10)
	if inv.UseFood(math.NaN()) || inv.UseFood(-3) {
		t.Fatalf("expected NaN and negative food needs to fail")
	}
	if !inv.UseFood(0) {
		t.Fatalf("expected zero food need to succeed")
	}
	if got := inv.QuantityOf(ItemFood); got != 10 {
		t.Fatalf("expected food untouched, got %d", got)
	}
}

func TestAmmunitionAndMedicalWrappers(t *testing.T) {
	inv := NewInventory(DefaultWagonCapacity)
	inv.Add(ItemAmmunition, 20)
	inv.Add(ItemMedicalSupply, 1)

	if !inv.UseAmmunition(20) {
		t.Fatalf("expected ammunition use to succeed")
	}
	if inv.UseAmmunition(1) {
		t.Fatalf("expected ammunition use on empty stock to fail")
	}
	if !inv.UseMedicalSupply() || inv.UseMedicalSupply() {
		t.Fatalf("expected exactly one medical supply use to succeed")
	}
}

func TestListAllUsesCatalogOrder(t *testing.T) {
	inv := NewInventory(DefaultWagonCapacity)
	inv.Add(ItemMedicalSupply, 1)
	inv.Add(ItemFood, 1)
	inv.Add(ItemSpareWheel, 1)

	items := inv.ListAll()
	want := []ItemKind{ItemFood, ItemSpareWheel, ItemMedicalSupply}
	for i, kind := range want {
		if items[i].Kind != kind {
			t.Fatalf("item %d kind=%s want=%s", i, items[i].Kind, kind)
		}
	}
}

func TestInventoryJSONUsesStableNames(t *testing.T) {
	inv := NewInventory(1200)
	inv.Add(ItemOxPair, 2)
	inv.Add(ItemSpareTongue, 1)

	data, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Inventory
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.MaxCapacity() != 1200 || restored.QuantityOf(ItemOxPair) != 2 || restored.QuantityOf(ItemSpareTongue) != 1 {
		t.Fatalf("unexpected restored inventory: %s", data)
	}

	bad := []byte(`{"max_capacity":10,"items":[{"kind":"wagon","quantity":1,"weight_per_unit":1,"cost_per_unit":1}]}`)
	if err := json.Unmarshal(bad, &restored); err == nil {
		t.Fatalf("expected unknown kind to be rejected")
	}
}

func TestParseItemKind(t *testing.T) {
	tests := []struct {
		in   string
		want ItemKind
	}{
		{in: "food", want: ItemFood},
		{in: "Oxen", want: ItemOxPair},
		{in: "spare wheel", want: ItemSpareWheel},
		{in: "medicine", want: ItemMedicalSupply},
		{in: "Medical supply", want: ItemMedicalSupply},
	}
	for _, tc := range tests {
		got, ok := ParseItemKind(tc.in)
		if !ok || got != tc.want {
			t.Fatalf("ParseItemKind(%q)=%q,%v want %q", tc.in, got, ok, tc.want)
		}
	}
	if _, ok := ParseItemKind("wagon"); ok {
		t.Fatalf("expected unknown item to fail")
	}
}
