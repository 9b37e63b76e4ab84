package store

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/user/oneclick-vpn/internal/logger"
	"github.com/user/oneclick-vpn/internal/observe"
	"github.com/user/oneclick-vpn/internal/profiles"
)

const selectedProfileKey = "selected_profile"

// Repository owns the persisted profile selection and reads bundled
// profile assets.
type Repository struct {
	prefs          *Prefs
	assets         fs.FS
	defaultProfile string

	mu       sync.Mutex // serializes reload of selected from prefs
	selected *observe.Value[string]
}

// NewRepository loads the current selection from prefs. An unset or unknown
// stored value falls back to defaultProfile.
func NewRepository(prefs *Prefs, assets fs.FS, defaultProfile string) (*Repository, error) {
	def, err := profiles.Normalize(defaultProfile)
	if err != nil {
		return nil, fmt.Errorf("default profile: %w", err)
	}

	r := &Repository{
		prefs:          prefs,
		assets:         assets,
		defaultProfile: def,
	}
	r.selected = observe.NewValue(r.load())
	prefs.OnChange(func(key string) {
		if key == selectedProfileKey {
			r.reload()
		}
	})
	return r, nil
}

func (r *Repository) load() string {
	stored, ok, err := r.prefs.Get(selectedProfileKey)
	if err != nil {
		logger.Warning("Failed to read selected profile, using default: %v", err)
		return r.defaultProfile
	}
	if !ok {
		return r.defaultProfile
	}
	id, err := profiles.Normalize(stored)
	if err != nil {
		logger.Warning("Stored profile %q is not bundled, using default", stored)
		return r.defaultProfile
	}
	return id
}

// reload publishes what prefs holds now, so the in-memory selection always
// ends on the last persisted write.
func (r *Repository) reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected.Set(r.load())
}

// SelectedProfile returns the current selection.
func (r *Repository) SelectedProfile() string {
	return r.selected.Get()
}

// SetSelectedProfile persists id as the selection. Subscribers are notified
// through the prefs change hook once the write is on disk.
func (r *Repository) SetSelectedProfile(id string) error {
	name, err := profiles.Normalize(id)
	if err != nil {
		return err
	}
	if err := r.prefs.Set(selectedProfileKey, name); err != nil {
		return fmt.Errorf("failed to save selected profile: %w", err)
	}
	return nil
}

// Subscribe follows the selection, starting with the current value.
func (r *Repository) Subscribe(buffer int) *observe.Subscription[string] {
	return r.selected.Subscribe(buffer)
}

// ReadProfile returns the bundled configuration text of id.
func (r *Repository) ReadProfile(id string) (string, error) {
	return profiles.Read(r.assets, id)
}
