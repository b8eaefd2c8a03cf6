package main

import (
	"github.com/spf13/cobra"

	"github.com/mrkline/modman/pkg/check"
	"github.com/mrkline/modman/pkg/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify recorded digests against the live target and backup tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, prof, err := loadProfile()
		if err != nil {
			return err
		}

		findings, err := check.Run(dir, prof, workerCount)
		if err != nil {
			return err
		}

		ui.RenderFindings(cmd.OutOrStdout(), findings)

		if len(findings) > 0 {
			return errSilentNonZero
		}
		return nil
	},
}
