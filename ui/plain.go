package ui

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// RenderPlain writes a one-shot text rendering of the view to w. It is the
// non-interactive binding of the same view model the tview dashboard uses,
// selected when stdout is not a terminal.
func RenderPlain(w io.Writer, view View) {
	updated := view.Updated
	if updated == "" {
		updated = "-"
	}
	fmt.Fprintf(w, "Faction Activity  %s  (last %s)\n\n", updated, windowLabel(view.WindowDays))
	for _, stat := range view.Stats {
		fmt.Fprintf(w, "%-16s %s\n", stat.Title+":", stat.Value)
	}
	fmt.Fprintln(w)

	if view.Placeholder != "" && view.VisibleRows() == 0 {
		fmt.Fprintln(w, view.Placeholder)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLVL\tDAYS IN\tLAST SEEN\tSEEN\tACTIVE\tPOLLS\tPRESENCE")
	for _, row := range view.Rows {
		if !row.Visible {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%d\t%d\t%s\n",
			row.Name, row.Level, row.DaysInFaction, row.LastSeen, row.LastSeenAgo,
			row.DaysActive, row.TotalPolls, row.Presence)
	}
	_ = tw.Flush()
}

// RenderPlainTimeline writes one member's timeline to w.
func RenderPlainTimeline(w io.Writer, tl Timeline) {
	fmt.Fprintf(w, "%s\n", tl.Title)
	if tl.Placeholder != "" {
		fmt.Fprintln(w, tl.Placeholder)
		return
	}
	for _, entry := range tl.Entries {
		fmt.Fprintf(w, "%s  %s  %s\n", entry.When, entry.Relative, entry.Status)
	}
}
