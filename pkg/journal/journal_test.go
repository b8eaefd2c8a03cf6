package journal_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrkline/modman/pkg/journal"
)

func TestAppendAndLines(t *testing.T) {
	dir := t.TempDir()
	j := journal.New(dir)

	assert.False(t, j.Exists())

	require.NoError(t, j.Append(journal.OpReplace, "A.txt"))
	require.NoError(t, j.Append(journal.OpAdd, "B.txt"))

	assert.True(t, j.Exists())

	lines, err := j.Lines()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, journal.Line{Op: journal.OpReplace, Path: "A.txt"}, lines[0])
	assert.Equal(t, journal.Line{Op: journal.OpAdd, Path: "B.txt"}, lines[1])
}

func TestDeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	j := journal.New(dir)

	require.NoError(t, j.Append(journal.OpAdd, "A.txt"))
	require.NoError(t, j.Delete())

	assert.False(t, j.Exists())
	assert.NoFileExists(t, filepath.Join(dir, journal.FileName))
}

func TestLinesOnMissingJournal(t *testing.T) {
	dir := t.TempDir()
	j := journal.New(dir)

	lines, err := j.Lines()
	require.NoError(t, err)
	assert.Empty(t, lines)
}
