package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shaykeh/ShayQuickNote/pkg/prefs"
)

func newThemeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark|system]",
		Short: "Show or set the theme preference.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.theme)
				return nil
			}
			return a.prefs.SetTheme(prefs.Theme(args[0]))
		},
	}
}
