package trail

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

type StockedItem struct {
	Kind          ItemKind `json:"kind"`
	Quantity      uint32   `json:"quantity"`
	WeightPerUnit float64  `json:"weight_per_unit"`
	CostPerUnit   uint32   `json:"cost_per_unit"`
}

func (i StockedItem) TotalWeight() float64 {
	return float64(i.Quantity) * i.WeightPerUnit
}

func (i StockedItem) TotalCost() uint64 {
	return uint64(i.Quantity) * uint64(i.CostPerUnit)
}

type CapacityInfo struct {
	Current     float64 `json:"current"`
	Max         float64 `json:"max"`
	PercentFull float64 `json:"percent_full"`
}

// Inventory tracks stocked items against a weight capacity in pounds.
//
// Add never checks capacity. A load above MaxCapacity is allowed and flagged:
// Overloaded reports it and an inventory.overloaded event is emitted. Callers
// that must respect capacity use TryAdd or consult CanAdd first.
type Inventory struct {
	items       map[ItemKind]*StockedItem
	maxCapacity float64
	sink        EventSink
}

func NewInventory(maxCapacity float64) *Inventory {
	return &Inventory{
		items:       make(map[ItemKind]*StockedItem),
		maxCapacity: maxCapacity,
	}
}

func (inv *Inventory) MaxCapacity() float64 {
	return inv.maxCapacity
}

func (inv *Inventory) SetEventSink(sink EventSink) {
	inv.sink = sink
}

// Add stocks qty units of kind. Unknown kinds are ignored.
func (inv *Inventory) Add(kind ItemKind, qty uint32) {
	if item, ok := inv.items[kind]; ok {
		item.Quantity = saturatingAdd(item.Quantity, qty)
	} else {
		entry, ok := CatalogEntryFor(kind)
		if !ok || qty == 0 {
			return
		}
		inv.ensureItems()
		inv.items[kind] = &StockedItem{
			Kind:          kind,
			Quantity:      qty,
			WeightPerUnit: entry.WeightPerUnit,
			CostPerUnit:   entry.CostPerUnit,
		}
	}
	if inv.Overloaded() {
		info := inv.CapacityInfo()
		emit(inv.sink, Event{
			Kind: EventInventoryOverloaded,
			Attrs: map[string]any{
				"kind":     string(kind),
				"added":    qty,
				"weight":   info.Current,
				"capacity": info.Max,
			},
		})
	}
}

// TryAdd adds only when the result stays within capacity.
func (inv *Inventory) TryAdd(kind ItemKind, qty uint32) bool {
	if !inv.CanAdd(kind, qty) {
		return false
	}
	inv.Add(kind, qty)
	return true
}

// Remove takes qty units of kind. It reports false and changes nothing when
// fewer than qty units are held. A record that reaches zero is deleted.
func (inv *Inventory) Remove(kind ItemKind, qty uint32) bool {
	item, ok := inv.items[kind]
	if !ok {
		return qty == 0
	}
	if item.Quantity < qty {
		return false
	}
	item.Quantity -= qty
	if item.Quantity == 0 {
		delete(inv.items, kind)
	}
	return true
}

func (inv *Inventory) QuantityOf(kind ItemKind) uint32 {
	if item, ok := inv.items[kind]; ok {
		return item.Quantity
	}
	return 0
}

func (inv *Inventory) TotalWeight() float64 {
	total := 0.0
	for _, item := range inv.items {
		total += item.TotalWeight()
	}
	return total
}

func (inv *Inventory) TotalValue() uint64 {
	var total uint64
	for _, item := range inv.items {
		total += item.TotalCost()
	}
	return total
}

// CanAdd reports whether qty more units of kind fit, using the stocked unit
// weight when the kind is held and the catalog default otherwise.
func (inv *Inventory) CanAdd(kind ItemKind, qty uint32) bool {
	weightPerUnit, ok := inv.weightPerUnit(kind)
	if !ok {
		return false
	}
	return inv.TotalWeight()+weightPerUnit*float64(qty) <= inv.maxCapacity
}

func (inv *Inventory) Overloaded() bool {
	return inv.TotalWeight() > inv.maxCapacity
}

func (inv *Inventory) CapacityInfo() CapacityInfo {
	current := inv.TotalWeight()
	info := CapacityInfo{Current: current, Max: inv.maxCapacity}
	if inv.maxCapacity > 0 {
		info.PercentFull = current / inv.maxCapacity * 100
	}
	return info
}

// ListAll returns copies of every stocked item in catalog order.
func (inv *Inventory) ListAll() []StockedItem {
	out := make([]StockedItem, 0, len(inv.items))
	for _, item := range inv.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		return catalogIndex(out[i].Kind) < catalogIndex(out[j].Kind)
	})
	return out
}

func (inv *Inventory) IsEmpty() bool {
	return len(inv.items) == 0
}

// UseFood removes pounds of food rounded up to whole units.
func (inv *Inventory) UseFood(pounds float64) bool {
	if math.IsNaN(pounds) || pounds < 0 {
		return false
	}
	if pounds == 0 {
		return true
	}
	units := math.Ceil(pounds)
	if units > math.MaxUint32 {
		return false
	}
	return inv.Remove(ItemFood, uint32(units))
}

func (inv *Inventory) UseAmmunition(qty uint32) bool {
	return inv.Remove(ItemAmmunition, qty)
}

func (inv *Inventory) UseMedicalSupply() bool {
	return inv.Remove(ItemMedicalSupply, 1)
}

func (inv *Inventory) weightPerUnit(kind ItemKind) (float64, bool) {
	if item, ok := inv.items[kind]; ok {
		return item.WeightPerUnit, true
	}
	entry, ok := CatalogEntryFor(kind)
	if !ok {
		return 0, false
	}
	return entry.WeightPerUnit, true
}

func (inv *Inventory) ensureItems() {
	if inv.items == nil {
		inv.items = make(map[ItemKind]*StockedItem)
	}
}

func (inv *Inventory) clone() *Inventory {
	out := NewInventory(inv.maxCapacity)
	for kind, item := range inv.items {
		copied := *item
		out.items[kind] = &copied
	}
	return out
}

func saturatingAdd(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

type inventoryDocument struct {
	MaxCapacity float64       `json:"max_capacity"`
	Items       []StockedItem `json:"items"`
}

func (inv *Inventory) MarshalJSON() ([]byte, error) {
	return json.Marshal(inventoryDocument{
		MaxCapacity: inv.maxCapacity,
		Items:       inv.ListAll(),
	})
}

func (inv *Inventory) UnmarshalJSON(data []byte) error {
	var doc inventoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	items := make(map[ItemKind]*StockedItem, len(doc.Items))
	for _, item := range doc.Items {
		if !item.Kind.Valid() {
			return fmt.Errorf("unknown item kind: %q", item.Kind)
		}
		if _, dup := items[item.Kind]; dup {
			return fmt.Errorf("duplicate item kind: %q", item.Kind)
		}
		if item.Quantity == 0 {
			continue
		}
		copied := item
		items[item.Kind] = &copied
	}
	inv.items = items
	inv.maxCapacity = doc.MaxCapacity
	return nil
}
