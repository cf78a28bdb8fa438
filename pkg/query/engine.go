// Package query derives the live, filtered, sorted note view.
// The derivation is a pure function of the store contents and the
// current parameters; the engine re-runs it whenever the notes table
// or the parameters change.
package query

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Shaykeh/ShayQuickNote/internal/store"
)

// SortOrder selects the within-partition ordering. Pinned notes sort
// first under every order.
type SortOrder string

const (
	SortUpdated SortOrder = "updatedAt" // newest modification first (default)
	SortCreated SortOrder = "createdAt" // newest creation first
	SortAlpha   SortOrder = "alpha"     // title ascending, locale-aware
)

// ParseSortOrder maps a user-supplied string to a SortOrder.
// The empty string selects the default.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "":
		return SortUpdated, nil
	case SortUpdated, SortCreated, SortAlpha:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Params is the filter/sort tuple the view is derived from.
// Zero values mean "no filter": FolderID "" keeps all folders, Tag ""
// skips tag filtering, blank Search matches everything.
type Params struct {
	FolderID     string
	Tag          string
	Search       string
	Sort         SortOrder
	ShowArchived bool
}

// Source is the slice of the store the engine needs.
type Source interface {
	ListNotes() ([]*store.Note, error)
	Subscribe(fn func(store.Table)) (unsubscribe func())
}

// Engine maintains a live note view. It subscribes to the store and
// invalidates on any notes-table change; the next Notes call
// recomputes. Between changes the derived view is memoized, which is
// observationally identical to recomputing fresh every time.
type Engine struct {
	mu     sync.Mutex
	source Source
	log    zerolog.Logger
	params Params
	dirty  bool
	view   []*store.Note
	unsub  func()
}

// NewEngine creates an engine over src with default parameters.
func NewEngine(src Source, logger zerolog.Logger) *Engine {
	e := &Engine{
		source: src,
		log:    logger,
		params: Params{Sort: SortUpdated},
		dirty:  true,
	}
	e.unsub = src.Subscribe(func(table store.Table) {
		if table == store.TableNotes {
			e.invalidate()
		}
	})
	return e
}

// Close detaches the engine from the store.
func (e *Engine) Close() {
	if e.unsub != nil {
		e.unsub()
	}
}

func (e *Engine) invalidate() {
	e.mu.Lock()
	e.dirty = true
	e.mu.Unlock()
}

// SetParams replaces the parameter tuple and invalidates the view.
func (e *Engine) SetParams(p Params) {
	if p.Sort == "" {
		p.Sort = SortUpdated
	}
	e.mu.Lock()
	e.params = p
	e.dirty = true
	e.mu.Unlock()
}

// Params returns the current parameter tuple.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Notes returns the current view, recomputing if the store or the
// parameters changed since the last call. A store read failure yields
// an empty view rather than an error; the next call retries.
func (e *Engine) Notes() []*store.Note {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dirty {
		all, err := e.source.ListNotes()
		if err != nil {
			e.log.Error().Err(err).Msg("note view recompute failed")
			return []*store.Note{}
		}
		e.view = Derive(all, e.params)
		e.dirty = false
	}

	out := make([]*store.Note, len(e.view))
	copy(out, e.view)
	return out
}

// Derive filters and sorts notes for p. Deterministic and pure.
func Derive(notes []*store.Note, p Params) []*store.Note {
	result := make([]*store.Note, 0, len(notes))

	// A blank query disables search, but a non-blank one matches with
	// its whitespace intact.
	q := ""
	if strings.TrimSpace(p.Search) != "" {
		q = strings.ToLower(p.Search)
	}
	for _, n := range notes {
		// Archive and normal views are disjoint partitions.
		if n.IsArchived != p.ShowArchived {
			continue
		}
		// Folder filtering is suppressed while viewing the archive.
		if !p.ShowArchived && p.FolderID != "" && n.FolderID != p.FolderID {
			continue
		}
		if p.Tag != "" && !n.HasTag(p.Tag) {
			continue
		}
		if q != "" && !matchesSearch(n, q) {
			continue
		}
		result = append(result, n)
	}

	sortNotes(result, p.Sort)
	return result
}

// matchesSearch reports a case-insensitive substring hit on the title,
// content, or any tag.
func matchesSearch(n *store.Note, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func sortNotes(notes []*store.Note, order SortOrder) {
	var coll *collate.Collator
	if order == SortAlpha {
		coll = collate.New(language.Und)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		switch order {
		case SortAlpha:
			return coll.CompareString(a.Title, b.Title) < 0
		case SortCreated:
			return a.CreatedAt > b.CreatedAt
		default:
			return a.UpdatedAt > b.UpdatedAt
		}
	})
}
