package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrkline/modman/pkg/activate"
	"github.com/mrkline/modman/pkg/modsource"
)

var addCmd = &cobra.Command{
	Use:     "add <SOURCE>...",
	Aliases: []string{"activate"},
	Short:   "Install one or more mods into the tracked directory",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, prof, err := loadProfile()
		if err != nil {
			return err
		}

		for _, sourcePath := range args {
			src, err := modsource.Open(sourcePath)
			if err != nil {
				return err
			}

			entries, err := src.Entries()
			if err != nil {
				src.Close()
				return err
			}

			bar := newProgressBar(len(entries), fmt.Sprintf("adding %s", src.ID()))
			err = activate.Activate(dir, prof, src, activate.Options{
				WorkerCount: workerCount,
				OnFileDone:  func() { _ = bar.Add(1) },
			})
			src.Close()
			finishProgressBar(bar)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", src.ID())
		}

		return nil
	},
}
