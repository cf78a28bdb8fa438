// Package store provides SQLite-backed persistence for QuickNote.
// This is the unified data layer replacing the Dexie/IndexedDB tables
// of the original web client.
package store

import "errors"

// Table identifies a record table for change notifications.
type Table string

const (
	TableNotes   Table = "notes"
	TableFolders Table = "folders"
)

// Sentinel errors for the mutation taxonomy. Any other error returned
// by the store is an underlying storage failure and is passed through
// unmodified.
var (
	ErrNotFound    = errors.New("store: record not found")
	ErrDuplicateID = errors.New("store: duplicate id")
)

// Note is a user-authored text entry with metadata.
// FolderID is "" when the note is unfiled (stored as NULL).
// Timestamps are Unix milliseconds.
type Note struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	FolderID   string   `json:"folderId"`
	Tags       []string `json:"tags"`
	IsPinned   bool     `json:"isPinned"`
	IsArchived bool     `json:"isArchived"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt"`
}

// HasTag reports whether the note's tag set contains tag.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Folder is a flat grouping bucket for notes. No nesting.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// NotePatch is a partial update for a note. Nil fields are left
// unchanged. Setting FolderID to a pointer to "" moves the note to
// the unfiled state. The store never stamps UpdatedAt on its own;
// callers supply it through the patch.
type NotePatch struct {
	Title      *string
	Content    *string
	FolderID   *string
	Tags       *[]string
	IsPinned   *bool
	IsArchived *bool
	UpdatedAt  *int64
}

// FolderPatch is a partial update for a folder.
type FolderPatch struct {
	Name *string
}

// Storer defines the interface for data persistence.
// SQLiteStore is the sole implementation.
type Storer interface {
	// Notes
	AddNote(note *Note) error
	GetNote(id string) (*Note, error)
	UpdateNote(id string, patch NotePatch) error
	TogglePinNote(id string, updatedAt int64) error
	DeleteNote(id string) error
	ListNotes() ([]*Note, error)
	CountNotes() (int, error)
	CountNotesInFolder(folderID string) (int, error)
	ListTags() ([]string, error)

	// Folders
	AddFolder(folder *Folder) error
	GetFolder(id string) (*Folder, error)
	UpdateFolder(id string, patch FolderPatch) error
	DeleteFolder(id string) error
	DeleteFolderCascade(id string) error
	ListFolders() ([]*Folder, error)

	// Subscriptions
	Subscribe(fn func(Table)) (unsubscribe func())

	// Lifecycle
	Close() error
}
