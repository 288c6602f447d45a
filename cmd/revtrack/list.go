package main

import (
	"fmt"

	"github.com/example/revtrack/internal/spaced_repetition"
	"github.com/example/revtrack/pkg/models"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var (
		asJSON  bool
		dueOnly bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List revisions ordered by due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.store.Scheduler()
			today := a.today()
			items := spaced_repetition.SortByDue(a.store.Snapshot().Revisions)
			if dueOnly {
				var due []models.RevisionItem
				for _, item := range items {
					if s.IsDue(item, today) {
						due = append(due, item)
					}
				}
				items = due
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, items)
			}
			if len(items) == 0 {
				if dueOnly {
					fmt.Fprintln(out, "Nothing due today.")
				} else {
					fmt.Fprintln(out, "No topics added yet. Add some topics to start tracking your revisions!")
				}
				return nil
			}
			return writeItems(out, s, items, today)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print items as JSON")
	cmd.Flags().BoolVar(&dueOnly, "due", false, "only items due today or overdue")

	return cmd
}
