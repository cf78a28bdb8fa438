package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTagsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag in use, archived notes included.",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, tag := range a.tags.Tags() {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}
}
