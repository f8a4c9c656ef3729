package trail

import "strings"

type ItemKind string

const (
	ItemFood          ItemKind = "food"
	ItemClothing      ItemKind = "clothing"
	ItemAmmunition    ItemKind = "ammunition"
	ItemOxPair        ItemKind = "ox_pair"
	ItemSpareWheel    ItemKind = "spare_wheel"
	ItemSpareAxle     ItemKind = "spare_axle"
	ItemSpareTongue   ItemKind = "spare_tongue"
	ItemMedicalSupply ItemKind = "medical_supply"
)

// CatalogEntry holds the defaults applied the first time a kind is stocked.
type CatalogEntry struct {
	Kind          ItemKind `json:"kind"`
	Label         string   `json:"label"`
	WeightPerUnit float64  `json:"weight_per_unit"`
	CostPerUnit   uint32   `json:"cost_per_unit"`
}

var itemCatalog = []CatalogEntry{
	{Kind: ItemFood, Label: "Food", WeightPerUnit: 1.0, CostPerUnit: 2},
	{Kind: ItemClothing, Label: "Clothing", WeightPerUnit: 2.0, CostPerUnit: 10},
	{Kind: ItemAmmunition, Label: "Ammunition", WeightPerUnit: 0.1, CostPerUnit: 2},
	{Kind: ItemOxPair, Label: "Ox pair", WeightPerUnit: 500.0, CostPerUnit: 40},
	{Kind: ItemSpareWheel, Label: "Spare wheel", WeightPerUnit: 15.0, CostPerUnit: 10},
	{Kind: ItemSpareAxle, Label: "Spare axle", WeightPerUnit: 10.0, CostPerUnit: 8},
	{Kind: ItemSpareTongue, Label: "Spare tongue", WeightPerUnit: 8.0, CostPerUnit: 6},
	{Kind: ItemMedicalSupply, Label: "Medical supply", WeightPerUnit: 0.5, CostPerUnit: 15},
}

func AllItemKinds() []ItemKind {
	kinds := make([]ItemKind, 0, len(itemCatalog))
	for _, entry := range itemCatalog {
		kinds = append(kinds, entry.Kind)
	}
	return kinds
}

func ItemCatalog() []CatalogEntry {
	return append([]CatalogEntry(nil), itemCatalog...)
}

func CatalogEntryFor(kind ItemKind) (CatalogEntry, bool) {
	for _, entry := range itemCatalog {
		if entry.Kind == kind {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

func (k ItemKind) Valid() bool {
	_, ok := CatalogEntryFor(k)
	return ok
}

func (k ItemKind) Label() string {
	if entry, ok := CatalogEntryFor(k); ok {
		return entry.Label
	}
	return string(k)
}

// ParseItemKind accepts stable names, labels and a few plural spellings.
func ParseItemKind(raw string) (ItemKind, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch key {
	case "oxen", "ox", "ox_pairs", "oxen_pair", "oxen_pairs":
		return ItemOxPair, true
	case "bullets", "ammo":
		return ItemAmmunition, true
	case "wheel", "wheels", "spare_wheels":
		return ItemSpareWheel, true
	case "axle", "axles", "spare_axles":
		return ItemSpareAxle, true
	case "tongue", "tongues", "spare_tongues":
		return ItemSpareTongue, true
	case "medicine", "medical", "medical_supplies", "medkit":
		return ItemMedicalSupply, true
	case "clothes":
		return ItemClothing, true
	}
	for _, entry := range itemCatalog {
		if string(entry.Kind) == key || strings.EqualFold(strings.ReplaceAll(entry.Label, " ", "_"), key) {
			return entry.Kind, true
		}
	}
	return "", false
}

func catalogIndex(kind ItemKind) int {
	for i, entry := range itemCatalog {
		if entry.Kind == kind {
			return i
		}
	}
	return len(itemCatalog)
}
