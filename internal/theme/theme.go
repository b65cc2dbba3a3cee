package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Preference is the two-valued color scheme choice.
type Preference string

const (
	Light Preference = "light"
	Dark  Preference = "dark"
)

// Default is used when neither a stored preference nor a terminal signal exists.
const Default = Dark

// preferences is the on-disk shape of preferences.json.
type preferences struct {
	Theme Preference `json:"theme,omitempty"`
}

// Store persists the theme preference in the state directory. The preference
// has its own lifecycle: it survives login and logout.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, "preferences.json")
}

// Load returns the stored preference and whether one exists.
func (s *Store) Load() (Preference, bool, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading preferences: %w", err)
	}

	var prefs preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return "", false, fmt.Errorf("parsing preferences: %w", err)
	}
	if prefs.Theme != Light && prefs.Theme != Dark {
		return "", false, nil
	}
	return prefs.Theme, true, nil
}

// Save writes the preference to disk.
func (s *Store) Save(pref Preference) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(preferences{Theme: pref}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling preferences: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// Controller resolves and owns the active theme. Resolution order: stored
// explicit preference, else terminal background signal, else Default. The
// terminal signal is consulted only while no explicit preference is stored.
type Controller struct {
	store    *Store
	active   Preference
	explicit bool
}

// NewController loads the stored preference and resolves the active theme.
// systemSignal reports the terminal's color scheme and whether it could be
// detected; pass DetectTerminal outside tests.
func NewController(store *Store, systemSignal func() (Preference, bool)) (*Controller, error) {
	c := &Controller{store: store}

	pref, ok, err := store.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		c.active = pref
		c.explicit = true
		return c, nil
	}

	if systemSignal != nil {
		if pref, ok := systemSignal(); ok {
			c.active = pref
			return c, nil
		}
	}
	c.active = Default
	return c, nil
}

// Active returns the theme currently in effect.
func (c *Controller) Active() Preference { return c.active }

// Explicit reports whether the active theme came from a stored user choice.
func (c *Controller) Explicit() bool { return c.explicit }

// Set records an explicit preference, persists it, and makes it active.
func (c *Controller) Set(pref Preference) error {
	if err := c.store.Save(pref); err != nil {
		return err
	}
	c.active = pref
	c.explicit = true
	return nil
}

// Toggle flips between light and dark as an explicit choice.
func (c *Controller) Toggle() error {
	next := Dark
	if c.active == Dark {
		next = Light
	}
	return c.Set(next)
}

// DetectTerminal guesses the terminal background from the COLORFGBG variable
// some terminals export ("fg;bg", bg 0-6 or 8 meaning a dark background).
func DetectTerminal() (Preference, bool) {
	val := os.Getenv("COLORFGBG")
	if val == "" {
		return "", false
	}
	parts := strings.Split(val, ";")
	bg := parts[len(parts)-1]
	switch bg {
	case "0", "1", "2", "3", "4", "5", "6", "8":
		return Dark, true
	case "7", "9", "10", "11", "12", "13", "14", "15":
		return Light, true
	}
	return "", false
}
