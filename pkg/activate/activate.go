// Package activate implements the mod activation engine: conflict
// detection, backup creation, mod file installation, and profile commit,
// fanned out in parallel across a mod's files.
package activate

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mrkline/modman/pkg/backupstore"
	"github.com/mrkline/modman/pkg/digest"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/fanout"
	"github.com/mrkline/modman/pkg/journal"
	"github.com/mrkline/modman/pkg/logging"
	"github.com/mrkline/modman/pkg/modsource"
	"github.com/mrkline/modman/pkg/profile"
)

var log = logging.GetLogger("activate")

// Options tunes the activation engine's execution.
type Options struct {
	// WorkerCount bounds file-level parallelism; 0 means hardware
	// concurrency.
	WorkerCount int
	// OnFileDone, if set, is called after each file entry completes
	// (success or failure), for progress reporting.
	OnFileDone func()
}

// Activate installs src into prof, mutating prof and the on-disk profile
// only if every file installs successfully.
func Activate(cwd string, prof *profile.Profile, src modsource.Source, opts Options) error {
	runID := uuid.NewString()
	id := src.ID()
	l := log.With().Str("run", runID).Str("mod", id).Logger()

	if _, exists := prof.Mods[id]; exists {
		return errors.Newf(errors.ErrAlreadyActivated, "%s has already been added!", id)
	}

	store := backupstore.New(cwd)
	j := store.Journal()
	if j.Exists() {
		return errors.New(errors.ErrJournalPresent,
			"an activation journal already exists; run `modman repair` first")
	}

	entries, err := src.Entries()
	if err != nil {
		return err
	}

	if err := checkConflicts(prof, id, entries); err != nil {
		return err
	}

	version, err := src.Version()
	if err != nil {
		return err
	}
	readme, err := src.Readme()
	if err != nil {
		return err
	}

	l.Info().Int("files", len(entries)).Msg("activating mod")

	records := make([]profile.FileRecord, len(entries))
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	type unit struct {
		idx   int
		entry modsource.Entry
	}
	units := make([]unit, len(entries))
	for i, e := range entries {
		units[i] = unit{idx: i, entry: e}
	}

	err = fanout.Run(units, opts.WorkerCount, func(u unit) error {
		defer func() {
			if opts.OnFileDone != nil {
				opts.OnFileDone()
			}
		}()
		rec, ferr := activateOne(store, j, prof.RootDirectory, u.entry)
		if ferr != nil {
			return ferr
		}
		records[u.idx] = rec
		return nil
	})

	if err != nil {
		l.Warn().Err(err).Msg("activation failed; leaving journal and backups for repair")
		return err
	}

	files := make(map[string]profile.FileRecord, len(entries))
	for i, p := range paths {
		files[p] = records[i]
	}

	prof.Mods[id] = profile.ModManifest{
		Version:     version,
		Readme:      readme,
		ActivatedAt: time.Now().UTC().Format(time.RFC3339),
		Files:       files,
	}

	if err := profile.Save(cwd, prof); err != nil {
		return err
	}
	if err := j.Delete(); err != nil {
		return err
	}

	l.Info().Msg("activation committed")
	return nil
}

// checkConflicts enforces precondition 3 (no path claimed by another
// active mod) and rejects duplicate paths within the incoming mod source.
func checkConflicts(prof *profile.Profile, newID string, entries []modsource.Entry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Path] {
			return errors.Newf(errors.ErrModMalformed, "%s contains duplicate path %s", newID, e.Path)
		}
		seen[e.Path] = true

		if existingID, _, found := prof.FindPath(e.Path); found {
			return errors.Newf(errors.ErrConflict,
				"%s from %s would overwrite the same file from %s", e.Path, newID, existingID)
		}
	}
	return nil
}

// activateOne performs steps (a)-(d) of §4.6 for a single file entry.
func activateOne(store *backupstore.Store, j *journal.Journal, root string, e modsource.Entry) (profile.FileRecord, error) {
	target := filepath.Join(root, filepath.FromSlash(e.Path))

	var originalHash string
	if _, err := os.Stat(target); err == nil {
		d, err := backupExisting(store, target, e.Path)
		if err != nil {
			return profile.FileRecord{}, err
		}
		if err := j.Append(journal.OpReplace, e.Path); err != nil {
			return profile.FileRecord{}, err
		}
		if err := store.PromoteBackup(e.Path); err != nil {
			return profile.FileRecord{}, err
		}
		originalHash = d.String()
	} else if os.IsNotExist(err) {
		if err := j.Append(journal.OpAdd, e.Path); err != nil {
			return profile.FileRecord{}, err
		}
	} else {
		return profile.FileRecord{}, errors.Wrapf(err, errors.ErrIO, "couldn't stat %s", target)
	}

	modHash, err := writeTarget(e, target)
	if err != nil {
		return profile.FileRecord{}, err
	}

	return profile.FileRecord{ModHash: modHash.String(), OriginalHash: originalHash}, nil
}

// backupExisting streams the existing target through the digest primitive
// into temp/P.
func backupExisting(store *backupstore.Store, target, p string) (digest.Digest, error) {
	f, err := os.Open(target)
	if err != nil {
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't open %s", target)
	}
	defer f.Close()

	d, err := store.StageBackup(p, f)
	if err != nil {
		return digest.Digest{}, err
	}
	return d, nil
}

// writeTarget streams the mod's content into a per-file temp sibling of
// target, then renames atomically, hashing the content along the way.
func writeTarget(e modsource.Entry, target string) (digest.Digest, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't create %s", filepath.Dir(target))
	}

	tmp := target + ".modman-tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't create %s", tmp)
	}

	src, err := e.Open()
	if err != nil {
		out.Close()
		os.Remove(tmp)
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't open mod file %s", e.Path)
	}

	d, copyErr := digest.CopyAndHash(out, src)
	src.Close()
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(tmp)
		return digest.Digest{}, errors.Wrapf(copyErr, errors.ErrIO, "couldn't write %s", target)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return digest.Digest{}, errors.Wrapf(closeErr, errors.ErrIO, "couldn't write %s", target)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return digest.Digest{}, errors.Wrapf(err, errors.ErrIO, "couldn't install %s", target)
	}
	return d, nil
}
