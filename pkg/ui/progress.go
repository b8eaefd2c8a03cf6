// Package ui renders modman's terminal output: progress bars during
// mutating operations, and styled tables for check and list.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// NewBar returns a throttled, self-clearing progress bar for total units
// of work, labeled descr. On a non-interactive output stream it returns a
// bar rendered to io.Discard so piping modman's output never fills a log
// with carriage-return spam.
func NewBar(out *os.File, total int, descr string) *progressbar.ProgressBar {
	if !isatty.IsTerminal(out.Fd()) {
		return progressbar.NewOptions(total, progressbar.OptionSetWriter(io.Discard))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(descr),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{Saucer: "#", SaucerPadding: " ", BarStart: "|", BarEnd: "|"}),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
