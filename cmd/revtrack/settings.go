package main

import (
	"fmt"

	"github.com/example/revtrack/internal/commands"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}
	cmd.AddCommand(settingsShowCmd(), notifyTimeCmd())
	return cmd
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			notifyTime := a.store.Snapshot().Settings.NotifyTime
			if notifyTime == "" {
				notifyTime = "not set"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "notify time: %s\n", notifyTime)
			return nil
		},
	}
}

func notifyTimeCmd() *cobra.Command {
	var clearTime bool

	cmd := &cobra.Command{
		Use:   "notify-time [HH:MM]",
		Short: "Set the daily reminder time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !clearTime {
				return fmt.Errorf("a time in HH:MM format or --clear is required")
			}
			var value string
			if len(args) == 1 {
				value = args[0]
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.dispatcher.Dispatch(cmd.Context(), commands.Command{
				Kind:       commands.SetNotifyTime,
				NotifyTime: value,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if value == "" {
				fmt.Fprintln(out, "Daily reminder cleared")
				return nil
			}
			fmt.Fprintf(out, "Daily reminder set for %s (notifications %s)\n", value, res.Permission)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearTime, "clear", false, "remove the reminder time")

	return cmd
}
