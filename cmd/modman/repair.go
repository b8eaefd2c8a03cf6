package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrkline/modman/pkg/backupstore"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/repair"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Reverse a crashed activation left behind in the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, prof, err := loadProfile()
		if err != nil {
			return err
		}

		store := backupstore.New(dir)
		if err := repair.Run(prof.RootDirectory, store); err != nil {
			if errors.IsCode(err, errors.ErrJournalMissing) {
				fmt.Fprintln(cmd.OutOrStdout(), "No activation journal found; nothing to repair.")
				return nil
			}
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Repair complete.")
		return nil
	},
}
