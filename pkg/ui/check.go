package ui

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/mrkline/modman/pkg/check"
)

// RenderFindings prints a human-readable report of check's findings to w.
func RenderFindings(w io.Writer, findings []check.Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(w, okStyle.Render("No deviations found."))
		return
	}

	rows := [][]string{{"Kind", "Mod", "Path", "Detail"}}
	hasStaleJournal := false
	for _, f := range findings {
		if f.Kind == check.StaleJournal {
			hasStaleJournal = true
		}
		detail := ""
		if f.Expected != "" || f.Actual != "" {
			detail = fmt.Sprintf("expected %s, found %s", short(f.Expected), short(f.Actual))
		}
		rows = append(rows, []string{string(f.Kind), f.ModID, f.Path, detail})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows))
	rendered, err := table.Srender()
	if err != nil {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d deviation(s) found", len(findings))))
		return
	}

	headline := fmt.Sprintf("%d deviation(s) found:", len(findings))
	if hasStaleJournal {
		fmt.Fprintln(w, errStyle.Render("! ")+titleStyle.Render(headline)+errStyle.Render(" (run `modman repair`)"))
	} else {
		fmt.Fprintln(w, warnIndicator+" "+titleStyle.Render(headline))
	}
	fmt.Fprintln(w, rendered)
}

func short(hexDigest string) string {
	if len(hexDigest) <= 12 {
		return hexDigest
	}
	return hexDigest[:12] + "…"
}
