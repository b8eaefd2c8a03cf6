// Package remove reverses activation for one or more mods. Unlike the
// original all-or-nothing design this supersedes, removal is deliberately
// non-destructive per file: a target whose content has drifted from what
// modman installed is assumed to be an external update and is left alone.
package remove

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrkline/modman/pkg/backupstore"
	"github.com/mrkline/modman/pkg/digest"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/fanout"
	"github.com/mrkline/modman/pkg/logging"
	"github.com/mrkline/modman/pkg/profile"
)

var log = logging.GetLogger("remove")

// Run reverses activation of each named mod in turn, mutating prof and
// saving it once per mod.
func Run(cwd string, prof *profile.Profile, ids []string, workerCount int) error {
	store := backupstore.New(cwd)

	for _, id := range ids {
		manifest, ok := prof.Mods[id]
		if !ok {
			return errors.Newf(errors.ErrNotActivated, "%s is not currently active", id)
		}

		paths := make([]string, 0, len(manifest.Files))
		for p := range manifest.Files {
			paths = append(paths, p)
		}

		l := log.With().Str("mod", id).Logger()
		l.Info().Int("files", len(paths)).Msg("removing mod")
		logDriftSummary(l, prof.RootDirectory, paths, manifest)

		err := fanout.Run(paths, workerCount, func(p string) error {
			return removeOne(store, prof.RootDirectory, p, manifest.Files[p])
		})
		if err != nil {
			return err
		}

		delete(prof.Mods, id)
		if err := profile.Save(cwd, prof); err != nil {
			return err
		}

		l.Info().Msg("removal committed")
	}

	return nil
}

// logDriftSummary does a read-only first pass over paths, logging which
// targets are still intact versus which have drifted, before removeOne's
// mutating second pass runs.
func logDriftSummary(l zerolog.Logger, root string, paths []string, manifest profile.ModManifest) {
	for _, p := range paths {
		target := filepath.Join(root, filepath.FromSlash(p))
		h, err := digest.HashFile(target)
		if err == nil && h.String() == manifest.Files[p].ModHash {
			l.Debug().Str("path", p).Msg("intact, will restore")
		} else {
			l.Debug().Str("path", p).Msg("drifted, will leave in place")
		}
	}
}

// removeOne applies the spec's per-file non-destructive removal rule to
// one FileRecord.
func removeOne(store *backupstore.Store, root, p string, rec profile.FileRecord) error {
	target := filepath.Join(root, filepath.FromSlash(p))

	h, err := digest.HashFile(target)
	matches := err == nil && h.String() == rec.ModHash

	if matches {
		if rec.HasOriginal() {
			if err := store.Restore(p, root); err != nil {
				return err
			}
		} else {
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(err, errors.ErrIO, "couldn't remove %s", target)
			}
			if err := backupstore.RemoveEmptyParents(target, root); err != nil {
				return err
			}
		}
		return nil
	}

	// Drifted or missing: leave the target as-is, but the backup no
	// longer has a home since no restore happened.
	if rec.HasOriginal() {
		if err := store.DeleteBackup(p); err != nil {
			return err
		}
	}
	return nil
}
