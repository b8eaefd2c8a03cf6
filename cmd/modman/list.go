package main

import (
	"github.com/spf13/cobra"

	"github.com/mrkline/modman/pkg/ui"
)

var (
	listFiles  bool
	listReadme bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active mods",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, prof, err := loadProfile()
		if err != nil {
			return err
		}

		ui.RenderList(cmd.OutOrStdout(), prof, ui.ListOptions{
			ShowFiles:  listFiles,
			ShowReadme: listReadme,
		})
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listFiles, "files", false, "Show each mod's installed file paths")
	listCmd.Flags().BoolVar(&listReadme, "readme", false, "Render each mod's recorded README")
}
