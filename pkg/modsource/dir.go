package modsource

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mrkline/modman/pkg/errors"
)

// dirSource is a mod source backed by a directory tree:
//
//	<path>/
//	  README.txt
//	  VERSION.txt
//	  <single-top-level-dir>/   <- the mod root
//	    <files...>
type dirSource struct {
	path    string
	id      string
	modRoot string
}

func newDirSource(srcPath, id string) (*dirSource, error) {
	entries, err := os.ReadDir(srcPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "couldn't read mod directory %s", srcPath)
	}

	var modRoot string
	for _, e := range entries {
		name := e.Name()
		switch name {
		case gitDir:
			continue
		case readmeFile, versionFile:
			continue
		default:
			if !e.IsDir() {
				return nil, errors.Newf(errors.ErrModMalformed,
					"%s contains things besides README.txt, VERSION.txt, and one base directory", srcPath)
			}
			if modRoot != "" {
				return nil, errors.Newf(errors.ErrModMalformed,
					"%s has more than one top-level directory", srcPath)
			}
			modRoot = filepath.Join(srcPath, name)
		}
	}

	if modRoot == "" {
		return nil, errors.Newf(errors.ErrModMalformed, "%s has no top-level mod directory", srcPath)
	}

	return &dirSource{path: srcPath, id: id, modRoot: modRoot}, nil
}

func (d *dirSource) ID() string { return d.id }

func (d *dirSource) Readme() (string, error) {
	return d.readMetaFile(readmeFile)
}

func (d *dirSource) Version() (string, error) {
	return d.readMetaFile(versionFile)
}

func (d *dirSource) readMetaFile(name string) (string, error) {
	p := filepath.Join(d.path, name)
	b, err := os.ReadFile(p)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrModMalformed, "couldn't read %s", name)
	}
	return string(b), nil
}

func (d *dirSource) Entries() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(d.modRoot, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.modRoot, p)
		if err != nil {
			return err
		}
		norm, err := normalizeEntryPath(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		filePath := p
		entries = append(entries, Entry{
			Path: norm,
			Open: func() (io.ReadCloser, error) {
				return os.Open(filePath)
			},
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "couldn't walk mod root %s", d.modRoot)
	}
	return entries, nil
}

func (d *dirSource) Close() error { return nil }
