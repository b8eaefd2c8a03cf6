package repair_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrkline/modman/pkg/backupstore"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/journal"
	"github.com/mrkline/modman/pkg/repair"
)

// TestRepairScenarioS8 simulates an activation interrupted after the
// backup was promoted and the target overwritten, but before the profile
// was written: repair should restore root/ to its pre-activation content,
// empty the backup store, and remove the journal.
func TestRepairScenarioS8(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	store := backupstore.New(cwd)
	require.NoError(t, store.Init())

	require.NoError(t, os.WriteFile(filepath.Join(root, "A.txt"), []byte("mod A content"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "B.txt"), []byte("mod B content"), 0644))

	require.NoError(t, os.MkdirAll(store.OriginalsDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.OriginalsDir(), "A.txt"), []byte("pre-existing A"), 0644))

	j := store.Journal()
	require.NoError(t, j.Append(journal.OpReplace, "A.txt"))
	require.NoError(t, j.Append(journal.OpAdd, "B.txt"))

	require.NoError(t, repair.Run(root, store))

	content, err := os.ReadFile(filepath.Join(root, "A.txt"))
	require.NoError(t, err)
	assert.Equal(t, "pre-existing A", string(content))

	assert.NoFileExists(t, filepath.Join(root, "B.txt"))
	assert.False(t, store.BackupExists("A.txt"))
	assert.NoDirExists(t, store.TempDir())
	assert.False(t, j.Exists())
}

func TestRepairPrefersOriginalsOverTemp(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	store := backupstore.New(cwd)
	require.NoError(t, store.Init())

	require.NoError(t, os.WriteFile(filepath.Join(root, "A.txt"), []byte("in-progress write"), 0644))
	require.NoError(t, os.MkdirAll(store.OriginalsDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.OriginalsDir(), "A.txt"), []byte("committed original"), 0644))
	require.NoError(t, os.MkdirAll(store.TempDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.TempDir(), "A.txt"), []byte("stale staged copy"), 0644))

	j := store.Journal()
	require.NoError(t, j.Append(journal.OpReplace, "A.txt"))

	require.NoError(t, repair.Run(root, store))

	content, err := os.ReadFile(filepath.Join(root, "A.txt"))
	require.NoError(t, err)
	assert.Equal(t, "committed original", string(content))
}

func TestRepairNoJournalIsError(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	store := backupstore.New(cwd)
	require.NoError(t, store.Init())

	err := repair.Run(root, store)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrJournalMissing))
}

func TestRepairLeavesAmbiguousTargetInPlace(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	store := backupstore.New(cwd)
	require.NoError(t, store.Init())

	require.NoError(t, os.WriteFile(filepath.Join(root, "A.txt"), []byte("whatever is there"), 0644))
	require.NoError(t, os.MkdirAll(store.TempDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.TempDir(), "A.txt"), []byte("staged, never promoted"), 0644))

	j := store.Journal()
	require.NoError(t, j.Append(journal.OpReplace, "A.txt"))

	require.NoError(t, repair.Run(root, store))

	content, err := os.ReadFile(filepath.Join(root, "A.txt"))
	require.NoError(t, err)
	assert.Equal(t, "whatever is there", string(content))
	assert.False(t, store.TempExists("A.txt"))
}
