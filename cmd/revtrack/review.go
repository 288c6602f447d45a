package main

import (
	"fmt"
	"strconv"

	"github.com/example/revtrack/internal/commands"
	"github.com/spf13/cobra"
)

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <id>",
		Short: "Mark a revision as reviewed and schedule the next one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.dispatcher.Dispatch(cmd.Context(), commands.Command{
				Kind: commands.MarkReviewed,
				ID:   id,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !res.Reviewed {
				fmt.Fprintf(out, "No revision with id %d\n", id)
				return nil
			}
			fmt.Fprintf(out, "%s (%s): %s\n", res.Item.Topic, res.Item.Subject,
				statusText(a.store.Scheduler(), *res.Item, a.today()))
			return nil
		},
	}
}
