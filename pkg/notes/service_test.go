package notes

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shaykeh/ShayQuickNote/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st, zerolog.Nop()), st
}

func TestCreateNoteDefaults(t *testing.T) {
	svc, st := newTestService(t)
	svc.now = func() int64 { return 1000 }

	id, err := svc.CreateNote("")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	note, err := st.GetNote(id)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "", note.Title)
	assert.Equal(t, "", note.Content)
	assert.Equal(t, "", note.FolderID)
	assert.Empty(t, note.Tags)
	assert.False(t, note.IsPinned)
	assert.False(t, note.IsArchived)
	assert.Equal(t, int64(1000), note.CreatedAt)
	assert.Equal(t, int64(1000), note.UpdatedAt)
}

func TestCreateNoteInFolder(t *testing.T) {
	svc, st := newTestService(t)

	folderID, err := svc.CreateFolder("Work")
	require.NoError(t, err)

	id, err := svc.CreateNote(folderID)
	require.NoError(t, err)

	note, err := st.GetNote(id)
	require.NoError(t, err)
	assert.Equal(t, folderID, note.FolderID)
}

func TestUpdateNoteDerivesTitle(t *testing.T) {
	svc, st := newTestService(t)
	svc.now = func() int64 { return 1000 }

	id, err := svc.CreateNote("")
	require.NoError(t, err)

	svc.now = func() int64 { return 2000 }
	content := "Buy milk\nand eggs"
	require.NoError(t, svc.UpdateNote(id, Patch{Content: &content}))

	note, err := st.GetNote(id)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", note.Title)
	assert.Equal(t, "Buy milk\nand eggs", note.Content)
	assert.Equal(t, int64(1000), note.CreatedAt)
	assert.Equal(t, int64(2000), note.UpdatedAt)
}

func TestUpdateNoteStampsTimestampForAnyField(t *testing.T) {
	svc, st := newTestService(t)
	svc.now = func() int64 { return 1000 }

	id, err := svc.CreateNote("")
	require.NoError(t, err)

	// A tags-only change still bumps updatedAt.
	svc.now = func() int64 { return 5000 }
	tags := []string{"work"}
	require.NoError(t, svc.UpdateNote(id, Patch{Tags: &tags}))

	note, err := st.GetNote(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, note.Tags)
	assert.Equal(t, int64(5000), note.UpdatedAt)
	assert.GreaterOrEqual(t, note.UpdatedAt, note.CreatedAt)
}

func TestUpdateNoteMissing(t *testing.T) {
	svc, _ := newTestService(t)
	content := "x"
	err := svc.UpdateNote("missing", Patch{Content: &content})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTogglePinReadsStoredState(t *testing.T) {
	svc, st := newTestService(t)

	id, err := svc.CreateNote("")
	require.NoError(t, err)

	require.NoError(t, svc.TogglePin(id))
	note, _ := st.GetNote(id)
	assert.True(t, note.IsPinned)

	// Two further toggles count twice even when issued back to back.
	require.NoError(t, svc.TogglePin(id))
	require.NoError(t, svc.TogglePin(id))
	note, _ = st.GetNote(id)
	assert.True(t, note.IsPinned)

	assert.ErrorIs(t, svc.TogglePin("missing"), store.ErrNotFound)
}

func TestArchiveUnarchive(t *testing.T) {
	svc, st := newTestService(t)
	svc.now = func() int64 { return 1000 }

	id, err := svc.CreateNote("")
	require.NoError(t, err)

	svc.now = func() int64 { return 2000 }
	require.NoError(t, svc.ArchiveNote(id))
	note, _ := st.GetNote(id)
	assert.True(t, note.IsArchived)
	assert.Equal(t, int64(2000), note.UpdatedAt)

	svc.now = func() int64 { return 3000 }
	require.NoError(t, svc.UnarchiveNote(id))
	note, _ = st.GetNote(id)
	assert.False(t, note.IsArchived)
	assert.Equal(t, int64(3000), note.UpdatedAt)
}

func TestDeleteNoteIdempotent(t *testing.T) {
	svc, st := newTestService(t)

	id, err := svc.CreateNote("")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(id))
	require.NoError(t, svc.DeleteNote(id))

	note, err := st.GetNote(id)
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestFolderLifecycle(t *testing.T) {
	svc, st := newTestService(t)

	_, err := svc.CreateFolder("   ")
	assert.ErrorIs(t, err, ErrEmptyFolderName)

	id, err := svc.CreateFolder("Work")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RenameFolder(id, ""), ErrEmptyFolderName)
	require.NoError(t, svc.RenameFolder(id, "Projects"))

	folder, err := st.GetFolder(id)
	require.NoError(t, err)
	assert.Equal(t, "Projects", folder.Name)

	assert.ErrorIs(t, svc.RenameFolder("missing", "X"), store.ErrNotFound)
}

func TestDeleteFolderCascadesToNull(t *testing.T) {
	svc, st := newTestService(t)

	folderID, err := svc.CreateFolder("Work")
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := svc.CreateNote(folderID)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, svc.DeleteFolder(folderID))

	for _, id := range ids {
		note, err := st.GetNote(id)
		require.NoError(t, err)
		require.NotNil(t, note, "cascade must never delete notes")
		assert.Equal(t, "", note.FolderID)
	}
	folder, err := st.GetFolder(folderID)
	require.NoError(t, err)
	assert.Nil(t, folder)
}

func TestTitleFromContent(t *testing.T) {
	assert.Equal(t, "Buy milk", TitleFromContent("Buy milk\nand eggs"))
	assert.Equal(t, "Untitled", TitleFromContent(""))
	assert.Equal(t, "Untitled", TitleFromContent("   \nsecond line"))
	assert.Equal(t, "trimmed", TitleFromContent("  trimmed  \nrest"))

	long := make([]rune, 0, 150)
	for i := 0; i < 150; i++ {
		long = append(long, 'ä')
	}
	title := TitleFromContent(string(long))
	assert.Equal(t, 100, len([]rune(title)))
}
