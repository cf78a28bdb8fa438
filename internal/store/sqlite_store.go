// SQLite-backed store using ncruces/go-sqlite3/driver, which provides
// a database/sql interface over a wazero-compiled SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// schemaVersion is stamped into PRAGMA user_version. Version 1 lacked
// the is_archived column; opening a version 1 file backfills it once.
const schemaVersion = 2

// schema defines all tables for the data layer.
const schema = `
-- Notes
-- folder_id is NULL for unfiled notes. tags holds the canonical JSON
-- tag set; note_tags mirrors it for membership lookups.
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    folder_id TEXT,
    tags TEXT NOT NULL DEFAULT '[]',
    is_pinned INTEGER NOT NULL DEFAULT 0,
    is_archived INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id);
CREATE INDEX IF NOT EXISTS idx_notes_pinned ON notes(is_pinned);
CREATE INDEX IF NOT EXISTS idx_notes_archived ON notes(is_archived);
CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at);
CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at);

-- Tag membership (multi-valued index over notes.tags)
-- Note: no foreign keys - referential integrity managed at application level
CREATE TABLE IF NOT EXISTS note_tags (
    note_id TEXT NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (note_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag);

-- Folders (flat, no nesting)
CREATE TABLE IF NOT EXISTS folders (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

// SQLiteStore is the SQLite-backed data store.
// The mutex serializes conflicting operations on the same record;
// reads take the shared lock.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
	nt notifier
}

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: the pool must never fan ":memory:" out to fresh
	// databases, and all access is serialized by the store mutex anyway.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// migrate brings the database file up to schemaVersion.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case version == 0:
		// Fresh database
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	case version == 1:
		// Version 1 predates archiving. Backfill every existing note
		// as not archived, exactly once.
		if _, err := db.Exec(`ALTER TABLE notes ADD COLUMN is_archived INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("failed to add is_archived column: %w", err)
		}
		if _, err := db.Exec(`UPDATE notes SET is_archived = 0`); err != nil {
			return fmt.Errorf("failed to backfill is_archived: %w", err)
		}
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_notes_archived ON notes(is_archived)`); err != nil {
			return fmt.Errorf("failed to index is_archived: %w", err)
		}
	case version == schemaVersion:
		return nil
	default:
		return fmt.Errorf("unsupported schema version %d (newest known is %d)", version, schemaVersion)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to stamp schema version: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Subscribe registers fn to be called after every committed mutation,
// with the affected table. The returned function removes the
// subscription.
func (s *SQLiteStore) Subscribe(fn func(Table)) func() {
	return s.nt.subscribe(fn)
}

// =============================================================================
// Note CRUD
// =============================================================================

// AddNote inserts a new note. Fails with ErrDuplicateID if the id is
// already present.
func (s *SQLiteStore) AddNote(note *Note) error {
	if err := s.addNote(note); err != nil {
		return err
	}
	s.nt.emit(TableNotes)
	return nil
}

func (s *SQLiteStore) addNote(note *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT 1 FROM notes WHERE id = ? LIMIT 1`, note.ID).Scan(&exists)
	if err == nil {
		return ErrDuplicateID
	}
	if err != sql.ErrNoRows {
		return err
	}

	tagsJSON, err := json.Marshal(note.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO notes (id, title, content, folder_id, tags, is_pinned, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, note.ID, note.Title, note.Content, nullableID(note.FolderID), string(tagsJSON),
		boolToInt(note.IsPinned), boolToInt(note.IsArchived), note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return err
	}

	if err := replaceNoteTags(tx, note.ID, note.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// GetNote retrieves a note by ID. Returns nil, nil when absent.
func (s *SQLiteStore) GetNote(id string) (*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, title, content, folder_id, tags, is_pinned, is_archived, created_at, updated_at
		FROM notes WHERE id = ?
	`, id)

	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote merges patch into an existing note. Fails with
// ErrNotFound if the id is absent. The read-merge-write runs inside
// one transaction under the write lock, so no torn state is visible.
func (s *SQLiteStore) UpdateNote(id string, patch NotePatch) error {
	if err := s.updateNote(id, patch); err != nil {
		return err
	}
	s.nt.emit(TableNotes)
	return nil
}

func (s *SQLiteStore) updateNote(id string, patch NotePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		SELECT id, title, content, folder_id, tags, is_pinned, is_archived, created_at, updated_at
		FROM notes WHERE id = ?
	`, id)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	tagsChanged := false
	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.FolderID != nil {
		note.FolderID = *patch.FolderID
	}
	if patch.Tags != nil {
		note.Tags = *patch.Tags
		tagsChanged = true
	}
	if patch.IsPinned != nil {
		note.IsPinned = *patch.IsPinned
	}
	if patch.IsArchived != nil {
		note.IsArchived = *patch.IsArchived
	}
	if patch.UpdatedAt != nil {
		note.UpdatedAt = *patch.UpdatedAt
	}

	tagsJSON, err := json.Marshal(note.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE notes
		SET title = ?, content = ?, folder_id = ?, tags = ?, is_pinned = ?, is_archived = ?, updated_at = ?
		WHERE id = ?
	`, note.Title, note.Content, nullableID(note.FolderID), string(tagsJSON),
		boolToInt(note.IsPinned), boolToInt(note.IsArchived), note.UpdatedAt, id)
	if err != nil {
		return err
	}

	if tagsChanged {
		if err := replaceNoteTags(tx, id, note.Tags); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// TogglePinNote flips is_pinned in a single write, stamping updated_at.
// The flip reads the stored state, not a caller-remembered one, so two
// rapid toggles always count twice.
func (s *SQLiteStore) TogglePinNote(id string, updatedAt int64) error {
	if err := s.togglePinNote(id, updatedAt); err != nil {
		return err
	}
	s.nt.emit(TableNotes)
	return nil
}

func (s *SQLiteStore) togglePinNote(id string, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE notes SET is_pinned = 1 - is_pinned, updated_at = ? WHERE id = ?
	`, updatedAt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNote removes a note. No-op if already absent.
func (s *SQLiteStore) DeleteNote(id string) error {
	if err := s.deleteNote(id); err != nil {
		return err
	}
	s.nt.emit(TableNotes)
	return nil
}

func (s *SQLiteStore) deleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM note_tags WHERE note_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM notes WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListNotes returns all notes. Order is unspecified at this layer.
func (s *SQLiteStore) ListNotes() ([]*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, title, content, folder_id, tags, is_pinned, is_archived, created_at, updated_at
		FROM notes
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// CountNotes returns the total number of notes.
func (s *SQLiteStore) CountNotes() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count)
	return count, err
}

// CountNotesInFolder returns the number of notes filed in a folder.
func (s *SQLiteStore) CountNotesInFolder(folderID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM notes WHERE folder_id = ?", folderID).Scan(&count)
	return count, err
}

// ListTags returns the distinct tags across all notes in ascending
// order, archived notes included. Served from the note_tags mirror;
// the result is identical to scanning every note's tag set.
func (s *SQLiteStore) ListTags() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT DISTINCT tag FROM note_tags ORDER BY tag")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// =============================================================================
// Folder CRUD
// =============================================================================

// AddFolder inserts a new folder. Fails with ErrDuplicateID if the id
// is already present.
func (s *SQLiteStore) AddFolder(folder *Folder) error {
	if err := s.addFolder(folder); err != nil {
		return err
	}
	s.nt.emit(TableFolders)
	return nil
}

func (s *SQLiteStore) addFolder(folder *Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM folders WHERE id = ? LIMIT 1`, folder.ID).Scan(&exists)
	if err == nil {
		return ErrDuplicateID
	}
	if err != sql.ErrNoRows {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO folders (id, name, created_at) VALUES (?, ?, ?)
	`, folder.ID, folder.Name, folder.CreatedAt)
	return err
}

// GetFolder retrieves a folder by ID. Returns nil, nil when absent.
func (s *SQLiteStore) GetFolder(id string) (*Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var folder Folder
	err := s.db.QueryRow(`
		SELECT id, name, created_at FROM folders WHERE id = ?
	`, id).Scan(&folder.ID, &folder.Name, &folder.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &folder, nil
}

// UpdateFolder merges patch into an existing folder. Fails with
// ErrNotFound if the id is absent.
func (s *SQLiteStore) UpdateFolder(id string, patch FolderPatch) error {
	if err := s.updateFolder(id, patch); err != nil {
		return err
	}
	s.nt.emit(TableFolders)
	return nil
}

func (s *SQLiteStore) updateFolder(id string, patch FolderPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Name == nil {
		// Nothing to change; still verify the folder exists.
		var exists int
		err := s.db.QueryRow(`SELECT 1 FROM folders WHERE id = ? LIMIT 1`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	res, err := s.db.Exec(`UPDATE folders SET name = ? WHERE id = ?`, *patch.Name, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFolder removes a folder record only. No-op if absent.
// Callers that need the cascade-to-null contract use
// DeleteFolderCascade instead.
func (s *SQLiteStore) DeleteFolder(id string) error {
	s.mu.Lock()
	_, err := s.db.Exec("DELETE FROM folders WHERE id = ?", id)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.nt.emit(TableFolders)
	return nil
}

// DeleteFolderCascade reassigns every note in the folder to the
// unfiled state and removes the folder, as one transaction. No reader
// can observe notes referencing a deleted folder, or a half-applied
// failure.
func (s *SQLiteStore) DeleteFolderCascade(id string) error {
	if err := s.deleteFolderCascade(id); err != nil {
		return err
	}
	s.nt.emit(TableNotes)
	s.nt.emit(TableFolders)
	return nil
}

func (s *SQLiteStore) deleteFolderCascade(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE notes SET folder_id = NULL WHERE folder_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM folders WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListFolders returns all folders ordered by name.
func (s *SQLiteStore) ListFolders() ([]*Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, created_at FROM folders ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*Folder
	for rows.Next() {
		var folder Folder
		if err := rows.Scan(&folder.ID, &folder.Name, &folder.CreatedAt); err != nil {
			return nil, err
		}
		folders = append(folders, &folder)
	}

	return folders, rows.Err()
}

// =============================================================================
// Helpers
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*Note, error) {
	var note Note
	var folderID sql.NullString
	var tagsJSON string
	var isPinned, isArchived int

	err := row.Scan(
		&note.ID, &note.Title, &note.Content, &folderID, &tagsJSON,
		&isPinned, &isArchived, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if folderID.Valid {
		note.FolderID = folderID.String
	}
	note.IsPinned = isPinned != 0
	note.IsArchived = isArchived != 0

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &note.Tags); err != nil {
			note.Tags = []string{}
		}
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	return &note, nil
}

func replaceNoteTags(tx *sql.Tx, noteID string, tags []string) error {
	if _, err := tx.Exec("DELETE FROM note_tags WHERE note_id = ?", noteID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.Exec(`
			INSERT INTO note_tags (note_id, tag) VALUES (?, ?)
			ON CONFLICT(note_id, tag) DO NOTHING
		`, noteID, tag); err != nil {
			return err
		}
	}
	return nil
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Compile-time interface check
var _ Storer = (*SQLiteStore)(nil)
