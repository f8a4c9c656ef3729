package travel

import (
	"errors"
	"fmt"
	"math"

	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

var (
	ErrUnknownItem       = errors.New("unknown item")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientFunds = errors.New("not enough money")
	ErrOverCapacity      = errors.New("wagon cannot carry that much")
)

// Store is the general store at the trailhead. Prices are the catalog cost
// plus a flat markup.
type Store struct {
	MarkupPercent uint32
}

func NewStore(markupPercent uint32) Store {
	return Store{MarkupPercent: markupPercent}
}

// Price is the per-unit price of kind in whole dollars.
func (st Store) Price(kind trail.ItemKind) (uint32, bool) {
	entry, ok := trail.CatalogEntryFor(kind)
	if !ok {
		return 0, false
	}
	price := uint64(entry.CostPerUnit) * uint64(100+st.MarkupPercent) / 100
	if price > math.MaxUint32 {
		price = math.MaxUint32
	}
	return uint32(price), true
}

// Quote is the total price of qty units.
func (st Store) Quote(kind trail.ItemKind, qty uint32) (uint64, error) {
	price, ok := st.Price(kind)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, kind)
	}
	if qty == 0 {
		return 0, ErrInvalidQuantity
	}
	return uint64(price) * uint64(qty), nil
}

// Buy pays for qty units of kind and loads them into the wagon. Nothing
// changes when the purchase fails.
func (st Store) Buy(s *trail.JourneyState, kind trail.ItemKind, qty uint32) (uint32, error) {
	total, err := st.Quote(kind, qty)
	if err != nil {
		return 0, err
	}
	if total > uint64(s.Money) {
		return 0, fmt.Errorf("%w: %s costs %s, you have %s", ErrInsufficientFunds, kind.Label(), trail.FormatMoney(clampMoney(total)), trail.FormatMoney(s.Money))
	}
	if !s.Inventory().TryAdd(kind, qty) {
		return 0, fmt.Errorf("%w: %d x %s", ErrOverCapacity, qty, kind.Label())
	}
	s.Money -= uint32(total)
	return uint32(total), nil
}

func clampMoney(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
