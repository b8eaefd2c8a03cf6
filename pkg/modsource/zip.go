package modsource

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/mrkline/modman/pkg/errors"
)

// zipSource is a mod source backed by a ZIP archive with the same layout
// as a directory source: README.txt and VERSION.txt at the archive root,
// and exactly one top-level directory holding the mod root.
type zipSource struct {
	id      string
	r       *zip.ReadCloser
	modRoot string
}

func newZipSource(srcPath, id string) (*zipSource, error) {
	r, err := zip.OpenReader(srcPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrModMalformed, "couldn't open %s as a ZIP archive", srcPath)
	}

	modRoot, err := findZipModRoot(r.File)
	if err != nil {
		r.Close()
		return nil, err
	}

	return &zipSource{id: id, r: r, modRoot: modRoot}, nil
}

// findZipModRoot finds the single top-level directory in the archive,
// tolerating README.txt, VERSION.txt, and a .git/ subtree alongside it.
func findZipModRoot(files []*zip.File) (string, error) {
	seen := make(map[string]bool)
	for _, f := range files {
		name := f.Name
		if name == readmeFile || name == versionFile {
			continue
		}
		top := strings.SplitN(name, "/", 2)[0]
		if top == gitDir {
			continue
		}
		seen[top] = true
	}

	if len(seen) == 0 {
		return "", errors.New(errors.ErrModMalformed, "ZIP archive has no top-level mod directory")
	}
	if len(seen) > 1 {
		return "", errors.New(errors.ErrModMalformed, "ZIP archive has more than one top-level directory")
	}
	for top := range seen {
		return top, nil
	}
	panic("unreachable")
}

func (z *zipSource) ID() string { return z.id }

func (z *zipSource) Readme() (string, error) {
	return z.readMetaFile(readmeFile)
}

func (z *zipSource) Version() (string, error) {
	return z.readMetaFile(versionFile)
}

func (z *zipSource) readMetaFile(name string) (string, error) {
	f, err := z.r.Open(name)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrModMalformed, "couldn't find %s in ZIP archive", name)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIO, "couldn't read %s", name)
	}
	return string(b), nil
}

func (z *zipSource) Entries() ([]Entry, error) {
	prefix := z.modRoot + "/"
	var entries []Entry
	for _, f := range z.r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		rel := strings.TrimPrefix(f.Name, prefix)
		norm, err := normalizeEntryPath(rel)
		if err != nil {
			return nil, err
		}
		zf := f
		entries = append(entries, Entry{
			Path: norm,
			Open: func() (io.ReadCloser, error) {
				return zf.Open()
			},
		})
	}
	return entries, nil
}

func (z *zipSource) Close() error {
	return z.r.Close()
}
