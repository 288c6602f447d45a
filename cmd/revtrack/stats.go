package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/example/revtrack/internal/analytics"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show revision analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			s := a.store.Scheduler()
			today := a.today()
			report, err := analytics.Build(s, a.store.Snapshot().Revisions, today)
			if errors.Is(err, analytics.ErrNoData) {
				fmt.Fprintln(out, "No data available. Add some topics first.")
				return nil
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, report)
			}

			fmt.Fprintf(out, "Pending: %d  Completed: %d\n", report.Overview.Pending, report.Overview.Completed)

			if len(report.Activity) > 0 {
				fmt.Fprintln(out, "\nReviews per day")
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, d := range report.Activity {
					fmt.Fprintf(tw, "%s\t%d\n", d.Day.Format("2006-01-02"), d.Count)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			fmt.Fprintln(out, "\nMissed revisions")
			if len(report.Missed) == 0 {
				fmt.Fprintln(out, "No missed revisions. Great job!")
			} else if err := writeItems(out, s, report.Missed, today); err != nil {
				return err
			}

			fmt.Fprintln(out, "\nUpcoming revisions")
			if len(report.Upcoming) == 0 {
				fmt.Fprintln(out, "No upcoming revisions.")
				return nil
			}
			return writeItems(out, s, report.Upcoming, today)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}
