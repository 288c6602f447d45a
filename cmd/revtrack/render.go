package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/revtrack/internal/spaced_repetition"
	"github.com/example/revtrack/pkg/models"
)

const dateLayout = "Mon, Jan 2 2006"

func formatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// statusText describes where an item stands, e.g. "Revision was due on ..."
func statusText(s *spaced_repetition.Scheduler, item models.RevisionItem, today time.Time) string {
	switch s.ClassifyStatus(item, today) {
	case spaced_repetition.StatusCompleted:
		return "Completed all revisions!"
	case spaced_repetition.StatusMissed:
		return "Revision was due on " + formatDate(*item.NextRevision, today.Location())
	default:
		return "Next revision on " + formatDate(*item.NextRevision, today.Location())
	}
}

func writeItems(w io.Writer, s *spaced_repetition.Scheduler, items []models.RevisionItem, today time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBJECT\tTOPIC\tSUBTOPICS\tREVISION\tSTATUS")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\tRevision #%d\t%s\n",
			item.ID, item.Subject, item.Topic, strings.Join(item.Subtopics, ", "),
			item.RevCount+1, statusText(s, item, today))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
