package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrkline/modman/pkg/profile"
)

func TestInstalledSize(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "A.txt"), []byte("12345"), 0644))

	files := map[string]profile.FileRecord{
		"A.txt":       {ModHash: "aa"},
		"missing.txt": {ModHash: "bb"},
	}

	assert.Equal(t, uint64(5), installedSize(root, files))
}

func TestActivatedSince(t *testing.T) {
	assert.Empty(t, activatedSince(""))
	assert.Empty(t, activatedSince("not-a-time"))

	then := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	assert.Contains(t, activatedSince(then), "ago")
}

func TestSortedKeys(t *testing.T) {
	files := map[string]profile.FileRecord{
		"zeta.txt":  {},
		"alpha.txt": {},
	}
	assert.Equal(t, []string{"alpha.txt", "zeta.txt"}, sortedKeys(files))
}
