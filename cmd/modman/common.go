package main

import (
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/profile"
	"github.com/mrkline/modman/pkg/ui"
)

// cwd returns the directory modman operates in: always the process's
// current working directory, where modman.profile and modman-backup/ live.
func cwd() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrIO, "couldn't determine current directory")
	}
	return dir, nil
}

// loadProfile is the common precondition for every subcommand but init:
// a profile must already exist in the current directory.
func loadProfile() (string, *profile.Profile, error) {
	dir, err := cwd()
	if err != nil {
		return "", nil, err
	}
	prof, err := profile.Load(dir)
	if err != nil {
		return "", nil, err
	}
	return dir, prof, nil
}

// newProgressBar returns a bar for total units of work, rendered to
// stderr so it never pollutes piped stdout.
func newProgressBar(total int, descr string) *progressbar.ProgressBar {
	return ui.NewBar(os.Stderr, total, descr)
}

func finishProgressBar(bar *progressbar.ProgressBar) {
	_ = bar.Finish()
}
