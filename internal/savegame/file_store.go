package savegame

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

type saveLibrary struct {
	FormatVersion int    `json:"format_version"`
	Slots         []Slot `json:"slots"`
}

// FileStore keeps every slot in a single JSON document.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Save(ctx context.Context, slot Slot) (Slot, error) {
	if err := ctx.Err(); err != nil {
		return Slot{}, err
	}
	slot, err := prepare(slot, f.now())
	if err != nil {
		return Slot{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	lib, err := f.read()
	if err != nil {
		return Slot{}, err
	}
	replaced := false
	for i := range lib.Slots {
		if lib.Slots[i].ID == slot.ID {
			lib.Slots[i] = slot
			replaced = true
			break
		}
	}
	if !replaced {
		lib.Slots = append(lib.Slots, slot)
	}
	if err := f.write(lib); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

func (f *FileStore) Load(ctx context.Context, id string) (Slot, error) {
	if err := ctx.Err(); err != nil {
		return Slot{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	lib, err := f.read()
	if err != nil {
		return Slot{}, err
	}
	for _, slot := range lib.Slots {
		if slot.ID == id {
			return slot, checkVersion(slot)
		}
	}
	return Slot{}, ErrNotFound
}

func (f *FileStore) List(ctx context.Context) ([]Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	lib, err := f.read()
	if err != nil {
		return nil, err
	}
	sortSlots(lib.Slots)
	return lib.Slots, nil
}

func (f *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	lib, err := f.read()
	if err != nil {
		return err
	}
	for i := range lib.Slots {
		if lib.Slots[i].ID == id {
			lib.Slots = append(lib.Slots[:i], lib.Slots[i+1:]...)
			return f.write(lib)
		}
	}
	return ErrNotFound
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) read() (saveLibrary, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return saveLibrary{FormatVersion: FormatVersion}, nil
		}
		return saveLibrary{}, fmt.Errorf("read saves: %w", err)
	}
	var lib saveLibrary
	if err := json.Unmarshal(data, &lib); err != nil {
		return saveLibrary{}, fmt.Errorf("parse saves %s: %w", f.path, err)
	}
	return lib, nil
}

func (f *FileStore) write(lib saveLibrary) error {
	lib.FormatVersion = FormatVersion
	if lib.Slots == nil {
		lib.Slots = []Slot{}
	}
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}
