// Package modsource provides a uniform view over a mod, whether it is laid
// out as a directory tree or packed into a ZIP archive. Both forms expose
// the same README.txt/VERSION.txt metadata and the same iterable of
// mod-root-relative file entries.
package modsource

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mrkline/modman/pkg/errors"
)

// Entry is one file under a mod's root directory.
type Entry struct {
	// Path is forward-slash, mod-root-relative: no leading slash, no "."
	// or ".." components.
	Path string
	// Open returns a fresh reader over the entry's content. The caller
	// must close it.
	Open func() (io.ReadCloser, error)
}

// Source is a uniform view over a mod, independent of whether it's backed
// by a directory or a ZIP archive.
type Source interface {
	// ID is the human key used to refer to this mod: the file name of the
	// archive or directory as passed on the command line.
	ID() string
	// Readme returns the content of README.txt at the source's top level.
	Readme() (string, error)
	// Version returns the content of VERSION.txt at the source's top level.
	Version() (string, error)
	// Entries lists every file under the mod root, excluding README.txt
	// and VERSION.txt.
	Entries() ([]Entry, error)
	// Close releases any resources (an open ZIP archive, for instance).
	Close() error
}

// Metadata file names, excluded from a mod's file entries; they live at the
// source's top level, not under the mod root.
const (
	readmeFile  = "README.txt"
	versionFile = "VERSION.txt"
)

// gitDir is carved out of directory-mode mod sources so that mods built
// and versioned with Git don't trip the single-top-level-directory rule.
const gitDir = ".git"

// Open inspects path and returns the appropriate Source: a directory-backed
// source if path is a directory, a ZIP-backed source if it is a regular
// file. Fails with ErrModMalformed if the layout doesn't hold exactly one
// top-level directory alongside README.txt/VERSION.txt.
func Open(srcPath string) (Source, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrModMalformed, "couldn't find mod source %s", srcPath)
	}

	id := filepath.Base(srcPath)

	if info.IsDir() {
		return newDirSource(srcPath, id)
	}
	return newZipSource(srcPath, id)
}

// normalizeEntryPath validates and forward-slashes a path discovered within
// a mod source, rejecting anything that could escape the mod root.
func normalizeEntryPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", errors.New(errors.ErrModMalformed, "mod source contains an empty path")
	}
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".", "..":
			return "", errors.Newf(errors.ErrModMalformed, "mod source contains a forbidden path component: %q", p)
		}
	}
	return path.Clean(p), nil
}
