package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrkline/modman/pkg/backupstore"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/profile"
)

var initRoot string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty profile and backup store in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := cwd()
		if err != nil {
			return err
		}

		if profile.Exists(cwd) {
			return errors.New(errors.ErrProfileExists, "A profile already exists.")
		}

		store := backupstore.New(cwd)
		if store.Exists() {
			return errors.New(errors.ErrBackupDirExists, "Please move or remove it.")
		}

		if initRoot == "" {
			return errors.New(errors.ErrRootDirNotFound, "--root is required")
		}
		info, err := os.Stat(initRoot)
		if err != nil || !info.IsDir() {
			return errors.Newf(errors.ErrRootDirNotFound, "%s is not an existing directory", initRoot)
		}

		if err := store.Init(); err != nil {
			return err
		}
		if err := profile.Save(cwd, profile.New(initRoot)); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized modman in %s, tracking %s\n", cwd, initRoot)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initRoot, "root", "", "Directory that mods will be installed into")
	_ = initCmd.MarkFlagRequired("root")
}
