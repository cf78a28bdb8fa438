package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shaykeh/ShayQuickNote/pkg/notes"
	"github.com/Shaykeh/ShayQuickNote/pkg/query"
)

func newNoteCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newNewCommand(a),
		newListCommand(a),
		newShowCommand(a),
		newEditCommand(a),
		newRmCommand(a),
		newPinCommand(a),
		newArchiveCommand(a, true),
		newArchiveCommand(a, false),
	}
}

func newNewCommand(a *app) *cobra.Command {
	var folderID, content string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note.",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.notes.CreateNote(folderID)
			if err != nil {
				return err
			}
			if content != "" {
				if err := a.notes.UpdateNote(id, notes.Patch{Content: &content}); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", "", "file the note in this folder id")
	cmd.Flags().StringVar(&content, "content", "", "initial note content")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var folderID, tag, search, sortOrder string
	var archived bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes for the current filters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sort, err := query.ParseSortOrder(sortOrder)
			if err != nil {
				return err
			}
			a.engine.SetParams(query.Params{
				FolderID:     folderID,
				Tag:          tag,
				Search:       search,
				Sort:         sort,
				ShowArchived: archived,
			})
			for _, n := range a.engine.Notes() {
				marker := " "
				if n.IsPinned {
					marker = "*"
				}
				title := n.Title
				if title == "" {
					title = "Untitled"
				}
				updated := time.UnixMilli(n.UpdatedAt).Format("2006-01-02 15:04")
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %-40s %s\n", marker, n.ID, title, updated)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", "", "only notes in this folder id")
	cmd.Flags().StringVar(&tag, "tag", "", "only notes carrying this tag")
	cmd.Flags().StringVar(&search, "search", "", "substring search over title, content, and tags")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "sort order: updatedAt, createdAt, or alpha")
	cmd.Flags().BoolVar(&archived, "archived", false, "show the archive instead of active notes")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.GetNote(args[0])
			if err != nil {
				return err
			}
			if n == nil {
				return fmt.Errorf("no note with id %s", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:       %s\n", n.ID)
			fmt.Fprintf(out, "title:    %s\n", n.Title)
			if n.FolderID != "" {
				fmt.Fprintf(out, "folder:   %s\n", n.FolderID)
			}
			if len(n.Tags) > 0 {
				fmt.Fprintf(out, "tags:     %s\n", strings.Join(n.Tags, ", "))
			}
			fmt.Fprintf(out, "pinned:   %t\n", n.IsPinned)
			fmt.Fprintf(out, "archived: %t\n", n.IsArchived)
			fmt.Fprintf(out, "created:  %s\n", time.UnixMilli(n.CreatedAt).Format(time.RFC3339))
			fmt.Fprintf(out, "updated:  %s\n", time.UnixMilli(n.UpdatedAt).Format(time.RFC3339))
			fmt.Fprintf(out, "\n%s\n", n.Content)
			return nil
		},
	}
}

func newEditCommand(a *app) *cobra.Command {
	var content, title, tagList, folderID string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a note's content, title, tags, or folder.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch notes.Patch
			flags := cmd.Flags()
			if flags.Changed("content") {
				patch.Content = &content
			}
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("tags") {
				tags := splitTags(tagList)
				patch.Tags = &tags
			}
			if flags.Changed("folder") {
				// --folder "" unfiles the note.
				patch.FolderID = &folderID
			}
			return a.notes.UpdateNote(args[0], patch)
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "replace the note content (title is re-derived)")
	cmd.Flags().StringVar(&title, "title", "", "set the title explicitly")
	cmd.Flags().StringVar(&tagList, "tags", "", "comma-separated tag set, replacing the current one")
	cmd.Flags().StringVar(&folderID, "folder", "", "move to this folder id; empty unfiles the note")
	return cmd
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func newRmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note permanently.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.notes.DeleteNote(args[0])
		},
	}
}

func newPinCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle a note's pinned flag.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.notes.TogglePin(args[0])
		},
	}
}

func newArchiveCommand(a *app, archive bool) *cobra.Command {
	use, short := "archive <id>", "Move a note into the archive."
	if !archive {
		use, short = "unarchive <id>", "Move a note back out of the archive."
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive {
				return a.notes.ArchiveNote(args[0])
			}
			return a.notes.UnarchiveNote(args[0])
		},
	}
}
