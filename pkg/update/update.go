// Package update implements the update engine: it detects target files
// whose content has drifted from the profile, rebases backups onto the new
// content, and reinstalls the mod's file at each drifted path.
package update

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/mrkline/modman/pkg/backupstore"
	"github.com/mrkline/modman/pkg/digest"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/fanout"
	"github.com/mrkline/modman/pkg/logging"
	"github.com/mrkline/modman/pkg/modsource"
	"github.com/mrkline/modman/pkg/profile"
)

var log = logging.GetLogger("update")

// Options tunes the update engine's execution.
type Options struct {
	WorkerCount int
	// DryRun, if set, performs the version check and reports which files
	// would be rebased without mutating anything.
	DryRun bool
}

// Result summarizes what Run did (or, for a dry run, would do).
type Result struct {
	RebasedPaths map[string][]string // modID -> paths rebased
}

// OpenSource resolves a mod's source by its recorded identifier. The CLI
// supplies this; tests may substitute a stub.
type OpenSource func(id string) (modsource.Source, error)

// DefaultOpenSource resolves id as a path relative to the current working
// directory. The id `add` records is only the base name of the path it was
// given, so a source added by a path outside the current directory is
// looked up here by that base name in the current directory.
func DefaultOpenSource(id string) (modsource.Source, error) {
	return modsource.Open(id)
}

// Run re-validates every active mod's version, then rebases and reinstalls
// any file whose target content has drifted from the profile.
func Run(cwd string, prof *profile.Profile, open OpenSource, opts Options) (*Result, error) {
	store := backupstore.New(cwd)
	result := &Result{RebasedPaths: make(map[string][]string)}

	sources := make(map[string]modsource.Source, len(prof.Mods))
	defer func() {
		for _, s := range sources {
			s.Close()
		}
	}()

	for _, modID := range prof.SortedModIDs() {
		src, err := open(modID)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceUnavailable, "mod source for %s is not reachable", modID)
		}
		sources[modID] = src

		observed, err := src.Version()
		if err != nil {
			return nil, err
		}
		recorded := prof.Mods[modID].Version
		if observed != recorded {
			return nil, errors.Newf(errors.ErrVersionMismatch,
				"%s: profile recorded version %q but source reports %q", modID, recorded, observed)
		}
	}

	log.Info().Int("mods", len(prof.Mods)).Msg("all mod versions validated")

	for _, modID := range prof.SortedModIDs() {
		manifest := prof.Mods[modID]
		src := sources[modID]

		entriesByPath, err := entryIndex(src)
		if err != nil {
			return nil, err
		}

		var drifted []string
		for p, rec := range manifest.Files {
			target := filepath.Join(prof.RootDirectory, filepath.FromSlash(p))
			h, err := digest.HashFile(target)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrIO, "couldn't hash %s", target)
			}
			if h.String() != rec.ModHash {
				drifted = append(drifted, p)
			}
		}

		if opts.DryRun {
			result.RebasedPaths[modID] = drifted
			continue
		}

		var filesMu sync.Mutex
		err = fanout.Run(drifted, opts.WorkerCount, func(p string) error {
			entry, ok := entriesByPath[p]
			if !ok {
				return errors.Newf(errors.ErrSourceUnavailable, "%s no longer provides %s", modID, p)
			}
			filesMu.Lock()
			rec := manifest.Files[p]
			filesMu.Unlock()

			newRec, err := rebaseOne(store, prof.RootDirectory, p, entry, rec)
			if err != nil {
				return err
			}

			filesMu.Lock()
			manifest.Files[p] = newRec
			filesMu.Unlock()
			return nil
		})
		if err != nil {
			return nil, err
		}

		prof.Mods[modID] = manifest
		result.RebasedPaths[modID] = drifted
	}

	if opts.DryRun {
		return result, nil
	}

	if err := profile.Save(cwd, prof); err != nil {
		return nil, err
	}

	return result, nil
}

func entryIndex(src modsource.Source) (map[string]modsource.Entry, error) {
	entries, err := src.Entries()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]modsource.Entry, len(entries))
	for _, e := range entries {
		idx[e.Path] = e
	}
	return idx, nil
}

// rebaseOne moves the drifted target aside as the new backup (supplanting
// the old one), reinstalls the mod's file, and returns the updated record.
func rebaseOne(store *backupstore.Store, root, p string, entry modsource.Entry, rec profile.FileRecord) (profile.FileRecord, error) {
	target := filepath.Join(root, filepath.FromSlash(p))

	f, err := os.Open(target)
	if err != nil {
		return profile.FileRecord{}, errors.Wrapf(err, errors.ErrIO, "couldn't open %s", target)
	}
	newBackupHash, err := store.StageBackup(p, f)
	f.Close()
	if err != nil {
		return profile.FileRecord{}, err
	}

	if rec.HasOriginal() {
		if err := store.DeleteBackup(p); err != nil {
			return profile.FileRecord{}, err
		}
	}
	if err := store.PromoteBackup(p); err != nil {
		return profile.FileRecord{}, err
	}

	r, err := entry.Open()
	if err != nil {
		return profile.FileRecord{}, errors.Wrapf(err, errors.ErrIO, "couldn't open mod file %s", p)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return profile.FileRecord{}, errors.Wrapf(err, errors.ErrIO, "couldn't create %s", filepath.Dir(target))
	}
	tmp := target + ".modman-tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return profile.FileRecord{}, errors.Wrapf(err, errors.ErrIO, "couldn't create %s", tmp)
	}
	newModHash, copyErr := digest.CopyAndHash(out, r)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp)
		if copyErr != nil {
			return profile.FileRecord{}, errors.Wrapf(copyErr, errors.ErrIO, "couldn't write %s", target)
		}
		return profile.FileRecord{}, errors.Wrapf(closeErr, errors.ErrIO, "couldn't write %s", target)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return profile.FileRecord{}, errors.Wrapf(err, errors.ErrIO, "couldn't install %s", target)
	}

	return profile.FileRecord{ModHash: newModHash.String(), OriginalHash: newBackupHash.String()}, nil
}
