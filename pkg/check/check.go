// Package check implements the integrity check engine: it verifies every
// digest recorded in the profile against the live target and backup files,
// reporting a structured, stably-ordered list of deviations.
package check

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/mrkline/modman/pkg/backupstore"
	"github.com/mrkline/modman/pkg/digest"
	"github.com/mrkline/modman/pkg/fanout"
	"github.com/mrkline/modman/pkg/profile"
)

// Kind identifies the category of a deviation found during a check.
type Kind string

const (
	MissingTarget    Kind = "MissingTarget"
	TargetModified   Kind = "TargetModified"
	MissingBackup    Kind = "MissingBackup"
	BackupModified   Kind = "BackupModified"
	UnexpectedBackup Kind = "UnexpectedBackup"
	StaleJournal     Kind = "StaleJournal"
)

// Finding is one deviation between the recorded profile and on-disk state.
type Finding struct {
	Kind     Kind
	ModID    string
	Path     string
	Expected string
	Actual   string
}

type fileUnit struct {
	modID string
	path  string
	rec   profile.FileRecord
}

// Run walks the profile and returns the collected deviations, ordered by
// mod source identifier then by path. An empty result means the profile
// and on-disk state are coherent.
func Run(cwd string, prof *profile.Profile, workerCount int) ([]Finding, error) {
	store := backupstore.New(cwd)

	var units []fileUnit
	for _, modID := range prof.SortedModIDs() {
		manifest := prof.Mods[modID]
		paths := make([]string, 0, len(manifest.Files))
		for p := range manifest.Files {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			units = append(units, fileUnit{modID: modID, path: p, rec: manifest.Files[p]})
		}
	}

	indices := make([]int, len(units))
	for i := range units {
		indices[i] = i
	}

	findings := make([][]Finding, len(units))
	err := fanout.Run(indices, workerCount, func(i int) error {
		findings[i] = checkOne(store, prof.RootDirectory, units[i])
		return nil
	})
	if err != nil {
		return nil, err
	}

	var all []Finding
	for _, f := range findings {
		all = append(all, f...)
	}

	if store.Journal().Exists() {
		all = append(all, Finding{Kind: StaleJournal})
	}

	return all, nil
}

func checkOne(store *backupstore.Store, root string, u fileUnit) []Finding {
	var out []Finding

	targetPath := filepath.Join(root, filepath.FromSlash(u.path))
	targetHash, err := digest.HashFile(targetPath)
	switch {
	case os.IsNotExist(err):
		out = append(out, Finding{Kind: MissingTarget, ModID: u.modID, Path: u.path})
	case err != nil:
		out = append(out, Finding{Kind: MissingTarget, ModID: u.modID, Path: u.path})
	case targetHash.String() != u.rec.ModHash:
		out = append(out, Finding{
			Kind: TargetModified, ModID: u.modID, Path: u.path,
			Expected: u.rec.ModHash, Actual: targetHash.String(),
		})
	}

	if u.rec.HasOriginal() {
		backupHash, err := store.ReadBackupHash(u.path)
		switch {
		case os.IsNotExist(err):
			out = append(out, Finding{Kind: MissingBackup, ModID: u.modID, Path: u.path})
		case err != nil:
			out = append(out, Finding{Kind: MissingBackup, ModID: u.modID, Path: u.path})
		case backupHash.String() != u.rec.OriginalHash:
			out = append(out, Finding{
				Kind: BackupModified, ModID: u.modID, Path: u.path,
				Expected: u.rec.OriginalHash, Actual: backupHash.String(),
			})
		}
	} else if store.BackupExists(u.path) {
		out = append(out, Finding{Kind: UnexpectedBackup, ModID: u.modID, Path: u.path})
	}

	return out
}
