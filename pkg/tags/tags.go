// Package tags maintains the live tag universe: the sorted set of all
// distinct tags across every note, archived notes included.
package tags

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Shaykeh/ShayQuickNote/internal/store"
)

// Source is the slice of the store the aggregate needs.
type Source interface {
	ListTags() ([]string, error)
	Subscribe(fn func(store.Table)) (unsubscribe func())
}

// Aggregate is a live view over the notes table. Any notes change
// invalidates it; the next Tags call recomputes from the store.
type Aggregate struct {
	mu     sync.Mutex
	source Source
	log    zerolog.Logger
	dirty  bool
	tags   []string
	unsub  func()
}

// NewAggregate creates the tag aggregate over src.
func NewAggregate(src Source, logger zerolog.Logger) *Aggregate {
	a := &Aggregate{source: src, log: logger, dirty: true}
	a.unsub = src.Subscribe(func(table store.Table) {
		if table == store.TableNotes {
			a.mu.Lock()
			a.dirty = true
			a.mu.Unlock()
		}
	})
	return a
}

// Close detaches the aggregate from the store.
func (a *Aggregate) Close() {
	if a.unsub != nil {
		a.unsub()
	}
}

// Tags returns the distinct tags in ascending lexicographic order.
// A store read failure yields an empty list; the next call retries.
func (a *Aggregate) Tags() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dirty {
		tags, err := a.source.ListTags()
		if err != nil {
			a.log.Error().Err(err).Msg("tag aggregate recompute failed")
			return []string{}
		}
		a.tags = tags
		a.dirty = false
	}

	out := make([]string, len(a.tags))
	copy(out, a.tags)
	return out
}
