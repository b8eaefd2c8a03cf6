package modsource_test

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/modsource"
)

func writeDirMod(t *testing.T, root string) string {
	t.Helper()
	src := filepath.Join(root, "mod1")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "modroot", "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.txt"), []byte("a mod"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "VERSION.txt"), []byte("1.0"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "modroot", "A.txt"), []byte("mod A"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "modroot", "sub", "B.txt"), []byte("mod B"), 0644))
	return src
}

func TestDirSourceEntries(t *testing.T) {
	root := t.TempDir()
	src := writeDirMod(t, root)

	s, err := modsource.Open(src)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "mod1", s.ID())

	readme, err := s.Readme()
	require.NoError(t, err)
	assert.Equal(t, "a mod", readme)

	version, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.0", version)

	entries, err := s.Entries()
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"A.txt", "sub/B.txt"}, paths)
}

func TestDirSourceGitCarveOut(t *testing.T) {
	root := t.TempDir()
	src := writeDirMod(t, root)
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".git", "config"), []byte("x"), 0644))

	s, err := modsource.Open(src)
	require.NoError(t, err)
	defer s.Close()

	entries, err := s.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDirSourceMultipleTopLevelDirs(t *testing.T) {
	root := t.TempDir()
	src := writeDirMod(t, root)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "anotherdir"), 0755))

	_, err := modsource.Open(src)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrModMalformed))
}

func TestZipSourceEntries(t *testing.T) {
	root := t.TempDir()
	zipPath := filepath.Join(root, "mod1.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	writeZipFile(t, zw, "README.txt", "a mod")
	writeZipFile(t, zw, "VERSION.txt", "1.0")
	writeZipFile(t, zw, "modroot/A.txt", "mod A")
	writeZipFile(t, zw, "modroot/sub/B.txt", "mod B")

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	s, err := modsource.Open(zipPath)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "mod1.zip", s.ID())

	entries, err := s.Entries()
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
		rc, err := e.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		assert.NotEmpty(t, content)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"A.txt", "sub/B.txt"}, paths)
}

func writeZipFile(t *testing.T, zw *zip.Writer, name, content string) {
	t.Helper()
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
}
