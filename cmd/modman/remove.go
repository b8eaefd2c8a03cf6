package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrkline/modman/pkg/remove"
)

var removeCmd = &cobra.Command{
	Use:     "remove <SOURCE>...",
	Aliases: []string{"deactivate"},
	Short:   "Reverse activation for one or more mods",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, prof, err := loadProfile()
		if err != nil {
			return err
		}

		if err := remove.Run(dir, prof, args, workerCount); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %v\n", args)
		return nil
	},
}
