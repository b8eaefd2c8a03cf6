package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mrkline/modman/pkg/update"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rebase backups and reinstall mod files wherever targets have drifted",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, prof, err := loadProfile()
		if err != nil {
			return err
		}

		result, err := update.Run(dir, prof, update.DefaultOpenSource, update.Options{
			WorkerCount: workerCount,
			DryRun:      dryRun,
		})
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(result.RebasedPaths))
		for id := range result.RebasedPaths {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		verb := "Rebased"
		if dryRun {
			verb = "Would rebase"
		}
		for _, id := range ids {
			paths := result.RebasedPaths[id]
			if len(paths) == 0 {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", verb, id, paths)
		}

		return nil
	},
}
