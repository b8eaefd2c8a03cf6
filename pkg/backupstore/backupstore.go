// Package backupstore manages modman-backup/, the on-disk hierarchy of
// committed backups (originals/), in-flight staging (temp/), and the
// activation journal.
package backupstore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mrkline/modman/pkg/digest"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/journal"
)

// DirName is the backup store's directory name, a sibling of
// modman.profile in the current working directory.
const DirName = "modman-backup"

const (
	originalsDirName = "originals"
	tempDirName      = "temp"
)

// Store is a handle onto one modman-backup/ tree.
type Store struct {
	root string
}

// New returns a Store rooted at <cwd>/modman-backup.
func New(cwd string) *Store {
	return &Store{root: filepath.Join(cwd, DirName)}
}

// Root returns the backup store's top-level directory.
func (s *Store) Root() string { return s.root }

// OriginalsDir returns modman-backup/originals.
func (s *Store) OriginalsDir() string { return filepath.Join(s.root, originalsDirName) }

// TempDir returns modman-backup/temp.
func (s *Store) TempDir() string { return filepath.Join(s.root, tempDirName) }

// Journal returns the journal living under this store's temp directory.
func (s *Store) Journal() *journal.Journal {
	return journal.New(s.TempDir())
}

// Exists reports whether the backup store directory is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.root)
	return err == nil
}

// Init creates an empty originals/ and temp/, for `init`.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.OriginalsDir(), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't create %s", s.OriginalsDir())
	}
	if err := os.MkdirAll(s.TempDir(), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't create %s", s.TempDir())
	}
	return nil
}

// StageBackup streams r into temp/P, hashing concurrently, truncating any
// pre-existing temp file at that path.
func (s *Store) StageBackup(p string, r io.Reader) (digest.Digest, error) {
	dest := filepath.Join(s.TempDir(), filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't create %s", filepath.Dir(dest))
	}

	f, err := os.Create(dest)
	if err != nil {
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't stage backup for %s", p)
	}
	defer f.Close()

	d, err := digest.CopyAndHash(f, r)
	if err != nil {
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't write staged backup for %s", p)
	}
	return d, nil
}

// PromoteBackup renames temp/P to originals/P, creating parent directories
// as needed. This must be an atomic rename on the same filesystem; the
// backup store and the target tree are assumed to share a volume.
func (s *Store) PromoteBackup(p string) error {
	src := filepath.Join(s.TempDir(), filepath.FromSlash(p))
	dest := filepath.Join(s.OriginalsDir(), filepath.FromSlash(p))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't create %s", filepath.Dir(dest))
	}
	if err := os.Rename(src, dest); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't promote backup for %s", p)
	}
	return nil
}

// ReadBackupHash streams originals/P to obtain its current digest.
func (s *Store) ReadBackupHash(p string) (digest.Digest, error) {
	path := filepath.Join(s.OriginalsDir(), filepath.FromSlash(p))
	d, err := digest.HashFile(path)
	if err != nil {
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't hash backup for %s", p)
	}
	return d, nil
}

// BackupExists reports whether originals/P is present.
func (s *Store) BackupExists(p string) bool {
	_, err := os.Stat(filepath.Join(s.OriginalsDir(), filepath.FromSlash(p)))
	return err == nil
}

// TempExists reports whether temp/P is present (a staged-but-not-promoted
// backup, typically meaning a crashed activation).
func (s *Store) TempExists(p string) bool {
	_, err := os.Stat(filepath.Join(s.TempDir(), filepath.FromSlash(p)))
	return err == nil
}

// Restore renames originals/P back onto targetRoot/P, creating parent
// directories as needed.
func (s *Store) Restore(p, targetRoot string) error {
	src := filepath.Join(s.OriginalsDir(), filepath.FromSlash(p))
	dest := filepath.Join(targetRoot, filepath.FromSlash(p))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't create %s", filepath.Dir(dest))
	}
	if err := os.Rename(src, dest); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't restore %s", p)
	}
	return nil
}

// DeleteBackup removes originals/P without restoring it to the target,
// used when `remove` finds the target has drifted and leaves it alone.
func (s *Store) DeleteBackup(p string) error {
	path := filepath.Join(s.OriginalsDir(), filepath.FromSlash(p))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIO, "couldn't delete backup for %s", p)
	}
	return nil
}

// DeleteTemp removes a single staged temp/P file, used by repair when a
// staged-but-unpromoted backup must be discarded.
func (s *Store) DeleteTemp(p string) error {
	path := filepath.Join(s.TempDir(), filepath.FromSlash(p))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIO, "couldn't delete staged backup for %s", p)
	}
	return nil
}

// ClearTemp recursively removes temp/ (including the journal, if any
// remains). Safe to call whenever no journal is present.
func (s *Store) ClearTemp() error {
	if err := os.RemoveAll(s.TempDir()); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't clear %s", s.TempDir())
	}
	return nil
}

// RemoveEmptyParents walks up from path, removing empty directories, and
// stops at (and never removes) upTo.
func RemoveEmptyParents(path, upTo string) error {
	dir := filepath.Dir(path)
	for dir != upTo && dir != "." && dir != string(filepath.Separator) {
		if err := os.Remove(dir); err != nil {
			// ENOTEMPTY or already-gone: stop silently, nothing more to prune.
			return nil
		}
		dir = filepath.Dir(dir)
	}
	return nil
}
