package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFolderCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a folder.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.notes.CreateFolder(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a folder.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.notes.RenameFolder(args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a folder; its notes become unfiled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.notes.DeleteFolder(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List folders with note counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := a.store.ListFolders()
			if err != nil {
				return err
			}
			for _, f := range folders {
				count, err := a.store.CountNotesInFolder(f.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s %d\n", f.ID, f.Name, count)
			}
			return nil
		},
	})

	return cmd
}
