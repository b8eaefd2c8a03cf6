package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withWorkingDir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeTestMod(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	src := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "modroot"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.txt"), []byte("a test mod"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "VERSION.txt"), []byte("1.0"), 0644))
	for p, content := range files {
		full := filepath.Join(src, "modroot", filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return src
}

func TestInitAddCheckRemove(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	withWorkingDir(t, cwd)

	rootCmd.SetArgs([]string{"init", "--root", root})
	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, filepath.Join(cwd, "modman.profile"))
	assert.DirExists(t, filepath.Join(cwd, "modman-backup", "originals"))

	modDir := writeTestMod(t, t.TempDir(), "greeting", map[string]string{"hello.txt": "hi there"})

	rootCmd.SetArgs([]string{"add", modDir})
	require.NoError(t, rootCmd.Execute())

	content, err := os.ReadFile(filepath.Join(root, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi there", string(content))

	rootCmd.SetArgs([]string{"check"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"list"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"remove", filepath.Base(modDir)})
	require.NoError(t, rootCmd.Execute())
	assert.NoFileExists(t, filepath.Join(root, "hello.txt"))
}

func TestInitTwiceFails(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	withWorkingDir(t, cwd)

	rootCmd.SetArgs([]string{"init", "--root", root})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"init", "--root", root})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A profile already exists.")
}
