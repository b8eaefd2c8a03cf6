// Package repair implements the repair engine: observing a stale journal
// left behind by a crashed activation and reversing it, returning the
// target tree and backup store to their pre-activation state.
package repair

import (
	"os"
	"path/filepath"

	"github.com/mrkline/modman/pkg/backupstore"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/journal"
	"github.com/mrkline/modman/pkg/logging"
)

var log = logging.GetLogger("repair")

// Run reverses every directive in the journal, then clears the backup
// store's temp area and deletes the journal. It does not touch the
// profile: the activation it reverses never committed.
func Run(root string, store *backupstore.Store) error {
	j := store.Journal()
	if !j.Exists() {
		return errors.New(errors.ErrJournalMissing, "no activation journal found; nothing to repair")
	}

	lines, err := j.Lines()
	if err != nil {
		return err
	}

	log.Info().Int("lines", len(lines)).Msg("repairing from journal")

	for _, line := range lines {
		var err error
		switch line.Op {
		case journal.OpReplace:
			err = repairReplace(store, root, line.Path)
		case journal.OpAdd:
			err = repairAdd(root, line.Path)
		default:
			err = errors.Newf(errors.ErrInternal, "unknown journal directive %q for %s", line.Op, line.Path)
		}
		if err != nil {
			return err
		}
	}

	if err := store.ClearTemp(); err != nil {
		return err
	}
	if err := j.Delete(); err != nil {
		return err
	}

	log.Info().Msg("repair complete")
	return nil
}

// repairReplace undoes a `Replace P` directive. The conservative policy
// when both originals/P and temp/P exist (belt-and-suspenders crash) is to
// prefer originals/P and discard temp/P.
func repairReplace(store *backupstore.Store, root, p string) error {
	if err := removeStaleTargetTemp(root, p); err != nil {
		return err
	}

	if store.BackupExists(p) {
		if store.TempExists(p) {
			if err := store.DeleteTemp(p); err != nil {
				return err
			}
		}
		if err := store.Restore(p, root); err != nil {
			return err
		}
		return nil
	}

	if store.TempExists(p) {
		// Backup was staged but never promoted: the target's current
		// content is of ambiguous provenance. The conservative policy is
		// to leave root/P as-is and drop the staged backup.
		return store.DeleteTemp(p)
	}

	return nil
}

// repairAdd undoes an `Add P` directive by removing the file modman wrote.
func repairAdd(root, p string) error {
	if err := removeStaleTargetTemp(root, p); err != nil {
		return err
	}
	target := filepath.Join(root, filepath.FromSlash(p))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIO, "couldn't remove %s", target)
	}
	return nil
}

// removeStaleTargetTemp discards the per-file temp sibling the activation
// engine writes through before its atomic rename, in case a crash happened
// mid-write and left it behind.
func removeStaleTargetTemp(root, p string) error {
	tmp := filepath.Join(root, filepath.FromSlash(p)) + ".modman-tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIO, "couldn't remove %s", tmp)
	}
	return nil
}
