package tags

import (
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shaykeh/ShayQuickNote/internal/store"
)

func addNote(t *testing.T, st *store.SQLiteStore, id string, tags []string, archived bool) {
	t.Helper()
	err := st.AddNote(&store.Note{
		ID:         id,
		Tags:       tags,
		IsArchived: archived,
		CreatedAt:  1,
		UpdatedAt:  1,
	})
	require.NoError(t, err)
}

func TestAggregateSortedDeduplicatedUnion(t *testing.T) {
	st, err := store.NewSQLiteStore()
	require.NoError(t, err)
	defer st.Close()

	a := NewAggregate(st, zerolog.Nop())
	defer a.Close()

	assert.Empty(t, a.Tags())

	addNote(t, st, "n1", []string{"work", "urgent"}, false)
	addNote(t, st, "n2", []string{"home", "work"}, false)
	// Archived notes contribute to the universe too.
	addNote(t, st, "n3", []string{"travel"}, true)

	assert.Equal(t, []string{"home", "travel", "urgent", "work"}, a.Tags())
}

func TestAggregateTracksMutations(t *testing.T) {
	st, err := store.NewSQLiteStore()
	require.NoError(t, err)
	defer st.Close()

	a := NewAggregate(st, zerolog.Nop())
	defer a.Close()

	addNote(t, st, "n1", []string{"alpha", "beta"}, false)
	assert.Equal(t, []string{"alpha", "beta"}, a.Tags())

	// Retag drops the stale entry.
	tags := []string{"gamma"}
	ts := int64(2)
	require.NoError(t, st.UpdateNote("n1", store.NotePatch{Tags: &tags, UpdatedAt: &ts}))
	assert.Equal(t, []string{"gamma"}, a.Tags())

	require.NoError(t, st.DeleteNote("n1"))
	assert.Empty(t, a.Tags())
}

func TestAggregateMatchesFullScan(t *testing.T) {
	st, err := store.NewSQLiteStore()
	require.NoError(t, err)
	defer st.Close()

	a := NewAggregate(st, zerolog.Nop())
	defer a.Close()

	addNote(t, st, "n1", []string{"z", "a", "m"}, false)
	addNote(t, st, "n2", []string{"a", "q"}, true)

	// The aggregate must equal the sorted deduplicated union of every
	// note's tag set.
	notes, err := st.ListNotes()
	require.NoError(t, err)
	set := map[string]bool{}
	for _, n := range notes {
		for _, tag := range n.Tags {
			set[tag] = true
		}
	}
	want := make([]string, 0, len(set))
	for tag := range set {
		want = append(want, tag)
	}
	sort.Strings(want)

	assert.Equal(t, want, a.Tags())
}
