// Package prefs persists user preferences independently of the note
// data. Currently a single value: the theme.
package prefs

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Theme is the presentation color scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

var (
	bucketPrefs = []byte("prefs")
	keyTheme    = []byte("theme")
)

// Store is a bbolt-backed preference store. Read once at startup,
// written through on every change. Pass it explicitly to whatever
// needs it; there is no package-level instance.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the preference file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the preference file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Theme returns the persisted theme. Missing or unrecognized values
// fall back to ThemeSystem.
func (s *Store) Theme() (Theme, error) {
	theme := ThemeSystem
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPrefs)
		if b == nil {
			return nil
		}
		switch t := Theme(b.Get(keyTheme)); t {
		case ThemeLight, ThemeDark, ThemeSystem:
			theme = t
		}
		return nil
	})
	if err != nil {
		return ThemeSystem, err
	}
	return theme, nil
}

// SetTheme persists the theme. Unknown values are rejected.
func (s *Store) SetTheme(theme Theme) error {
	switch theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketPrefs)
		if err != nil {
			return err
		}
		return b.Put(keyTheme, []byte(theme))
	})
}
