package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"golang.org/x/term"

	"github.com/mrkline/modman/pkg/profile"
)

// ListOptions controls how much detail RenderList prints per mod.
type ListOptions struct {
	ShowFiles  bool
	ShowReadme bool
}

// RenderList prints a human-readable summary of every active mod in prof.
func RenderList(w io.Writer, prof *profile.Profile, opts ListOptions) {
	ids := prof.SortedModIDs()
	if len(ids) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No mods are currently active."))
		return
	}

	for _, id := range ids {
		m := prof.Mods[id]
		fmt.Fprintf(w, "%s %s\n", okIndicator, titleStyle.Render(id))
		fmt.Fprintf(w, "  version %s, %s file(s), %s\n",
			m.Version, humanize.Comma(int64(len(m.Files))), humanize.Bytes(installedSize(prof.RootDirectory, m.Files)))
		if activatedAgo := activatedSince(m.ActivatedAt); activatedAgo != "" {
			fmt.Fprintf(w, "  activated %s\n", mutedStyle.Render(activatedAgo))
		}

		if opts.ShowFiles {
			for _, p := range sortedKeys(m.Files) {
				fmt.Fprintf(w, "    %s\n", mutedStyle.Render(p))
			}
		}

		if opts.ShowReadme && m.Readme != "" {
			rendered, err := renderReadme(m.Readme)
			if err != nil {
				rendered = m.Readme
			}
			fmt.Fprintln(w, rendered)
		}
	}
}

func renderReadme(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(readmeWidth()))
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

func readmeWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		if w > 100 {
			return 100
		}
		return w
	}
	return 80
}

func sortedKeys(files map[string]profile.FileRecord) []string {
	keys := lo.Keys(files)
	sort.Strings(keys)
	return keys
}

// installedSize sums the on-disk size of every file a mod installed,
// skipping any path that no longer exists.
func installedSize(root string, files map[string]profile.FileRecord) uint64 {
	var total uint64
	for p := range files {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			continue
		}
		total += uint64(info.Size())
	}
	return total
}

// activatedSince renders a human-friendly relative time, or "" if
// activatedAt is absent or unparsable (older profiles predate the field).
func activatedSince(activatedAt string) string {
	if activatedAt == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, activatedAt)
	if err != nil {
		return ""
	}
	return humanize.Time(t)
}
