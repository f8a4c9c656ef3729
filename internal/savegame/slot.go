package savegame

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/appengine-ltd/wagon-trail/internal/config"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

const FormatVersion = 1

var (
	ErrNotFound  = errors.New("save slot not found")
	ErrNoJourney = errors.New("save slot has no journey")
)

// Slot is one saved journey. ID is assigned on first save.
type Slot struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	SavedAt       time.Time           `json:"saved_at"`
	FormatVersion int                 `json:"format_version"`
	Journey       *trail.JourneyState `json:"journey"`
}

type Store interface {
	Save(ctx context.Context, slot Slot) (Slot, error)
	Load(ctx context.Context, id string) (Slot, error)
	List(ctx context.Context) ([]Slot, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the store selected by cfg.
func Open(cfg config.SavesConfig) (Store, error) {
	cfg.ApplyDefaults()
	switch cfg.Backend {
	case config.SaveBackendFile:
		return NewFileStore(cfg.Path), nil
	case config.SaveBackendSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown save backend: %s", cfg.Backend)
	}
}

// Resolve finds a slot by ID or by case-insensitive name. An empty ref
// picks the most recent save.
func Resolve(ctx context.Context, store Store, ref string) (Slot, error) {
	ref = strings.TrimSpace(ref)
	if ref != "" {
		if slot, err := store.Load(ctx, ref); err == nil {
			return slot, nil
		} else if !errors.Is(err, ErrNotFound) {
			return Slot{}, err
		}
	}
	slots, err := store.List(ctx)
	if err != nil {
		return Slot{}, err
	}
	for _, slot := range slots {
		if ref == "" || strings.EqualFold(slot.Name, ref) {
			if err := checkVersion(slot); err != nil {
				return Slot{}, err
			}
			return slot, nil
		}
	}
	return Slot{}, ErrNotFound
}

func prepare(slot Slot, now time.Time) (Slot, error) {
	if slot.Journey == nil {
		return Slot{}, ErrNoJourney
	}
	if strings.TrimSpace(slot.ID) == "" {
		slot.ID = uuid.NewString()
	}
	if strings.TrimSpace(slot.Name) == "" {
		slot.Name = defaultName(slot.Journey)
	}
	slot.SavedAt = now.UTC()
	slot.FormatVersion = FormatVersion
	return slot, nil
}

func defaultName(js *trail.JourneyState) string {
	if leader, ok := js.Leader(); ok {
		return fmt.Sprintf("%s, %s", leader.Name, js.Date().String())
	}
	return js.Date().String()
}

func checkVersion(slot Slot) error {
	if slot.FormatVersion > FormatVersion {
		return fmt.Errorf("save slot %s: format version %d is newer than %d", slot.ID, slot.FormatVersion, FormatVersion)
	}
	return nil
}

func sortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].SavedAt.Equal(slots[j].SavedAt) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].SavedAt.After(slots[j].SavedAt)
	})
}
