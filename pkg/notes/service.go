// Package notes is the exclusive write path for notes and folders.
// Every mutation stamps the modification timestamp; folder deletion
// cascades member notes to the unfiled state.
package notes

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shaykeh/ShayQuickNote/internal/store"
)

// ErrEmptyFolderName rejects folder creation or renaming with a blank
// display name.
var ErrEmptyFolderName = errors.New("notes: folder name must not be empty")

// maxTitleLen caps derived titles, counted in runes.
const maxTitleLen = 100

// Patch carries the caller-visible partial changes for UpdateNote.
// Nil fields are left unchanged; FolderID pointing at "" unfiles the
// note. Title is normally derived from Content and only needs setting
// to override that.
type Patch struct {
	Title      *string
	Content    *string
	FolderID   *string
	Tags       *[]string
	IsPinned   *bool
	IsArchived *bool
}

// Service mutates the store. All operations are atomic: they either
// apply fully or fail without visible effect.
type Service struct {
	store store.Storer
	log   zerolog.Logger
	now   func() int64
}

// NewService returns a mutation service over st.
func NewService(st store.Storer, logger zerolog.Logger) *Service {
	return &Service{
		store: st,
		log:   logger,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// CreateNote creates an empty note, optionally filed in a folder, and
// returns its id. Both timestamps are set to now.
func (s *Service) CreateNote(folderID string) (string, error) {
	now := s.now()
	note := &store.Note{
		ID:        uuid.NewString(),
		Title:     "",
		Content:   "",
		FolderID:  folderID,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.AddNote(note); err != nil {
		return "", err
	}
	s.log.Debug().Str("id", note.ID).Str("folder", folderID).Msg("note created")
	return note.ID, nil
}

// UpdateNote merges the patch into an existing note and stamps the
// modification timestamp regardless of which fields changed. When
// content changes without an explicit title, the title is re-derived
// from the content's first line.
func (s *Service) UpdateNote(id string, patch Patch) error {
	now := s.now()
	title := patch.Title
	if title == nil && patch.Content != nil {
		derived := TitleFromContent(*patch.Content)
		title = &derived
	}
	return s.store.UpdateNote(id, store.NotePatch{
		Title:      title,
		Content:    patch.Content,
		FolderID:   patch.FolderID,
		Tags:       patch.Tags,
		IsPinned:   patch.IsPinned,
		IsArchived: patch.IsArchived,
		UpdatedAt:  &now,
	})
}

// DeleteNote permanently removes a note. No-op if already absent.
func (s *Service) DeleteNote(id string) error {
	return s.store.DeleteNote(id)
}

// TogglePin flips the pinned flag, reading the stored state rather
// than trusting a caller-remembered one, so rapid repeated toggles
// always land on the state the user expects.
func (s *Service) TogglePin(id string) error {
	return s.store.TogglePinNote(id, s.now())
}

// ArchiveNote moves a note into the archive partition.
func (s *Service) ArchiveNote(id string) error {
	return s.setArchived(id, true)
}

// UnarchiveNote moves a note back to the normal partition.
func (s *Service) UnarchiveNote(id string) error {
	return s.setArchived(id, false)
}

func (s *Service) setArchived(id string, archived bool) error {
	now := s.now()
	return s.store.UpdateNote(id, store.NotePatch{
		IsArchived: &archived,
		UpdatedAt:  &now,
	})
}

// CreateFolder creates a folder and returns its id.
func (s *Service) CreateFolder(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyFolderName
	}
	folder := &store.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.store.AddFolder(folder); err != nil {
		return "", err
	}
	s.log.Debug().Str("id", folder.ID).Str("name", name).Msg("folder created")
	return folder.ID, nil
}

// RenameFolder changes a folder's display name.
func (s *Service) RenameFolder(id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyFolderName
	}
	return s.store.UpdateFolder(id, store.FolderPatch{Name: &name})
}

// DeleteFolder removes a folder, reassigning its notes to the unfiled
// state. Cascade and removal are one atomic unit in the store.
func (s *Service) DeleteFolder(id string) error {
	return s.store.DeleteFolderCascade(id)
}

// TitleFromContent derives a note title: the trimmed first line of the
// content, capped at 100 characters, or "Untitled" when that leaves
// nothing.
func TitleFromContent(content string) string {
	line := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "Untitled"
	}
	if r := []rune(line); len(r) > maxTitleLen {
		line = string(r[:maxTitleLen])
	}
	return line
}
