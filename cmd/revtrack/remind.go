package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func remindCmd() *cobra.Command {
	var (
		once     bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the daily reminder",
		Long: `remind runs until interrupted and sends one reminder a day at the
configured notify time when revisions are due. With --once it checks
immediately and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--reload must be positive, got %s", interval)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.cfg.Reminder.Enabled {
				return fmt.Errorf("reminders are disabled in config")
			}
			if _, err := a.notifier.RequestPermission(); err != nil {
				log.Printf("Failed to request notification permission: %v", err)
			}

			out := cmd.OutOrStdout()
			if once {
				due, err := a.reminders.CheckNow()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d revisions due\n", due)
				return nil
			}

			notifyTime := a.store.Snapshot().Settings.NotifyTime
			if err := a.reminders.Reschedule(notifyTime); err != nil {
				return err
			}
			a.reminders.Start()
			if notifyTime == "" {
				log.Println("No notify time set, waiting for one")
			} else {
				log.Printf("Daily reminder scheduled at %s", notifyTime)
			}

			// other invocations write to the same storage, so pick up
			// notify time changes by reloading
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					data, err := a.store.Load(ctx)
					if err != nil {
						log.Printf("Error reloading revisions: %v", err)
						continue
					}
					if data.Settings.NotifyTime == notifyTime {
						continue
					}
					notifyTime = data.Settings.NotifyTime
					if err := a.reminders.Reschedule(notifyTime); err != nil {
						log.Printf("Error rescheduling reminder: %v", err)
						continue
					}
					log.Printf("Reminder time changed to %q", notifyTime)
				case <-ctx.Done():
					log.Println("Stopping reminder...")
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "check due revisions now and exit")
	cmd.Flags().DurationVar(&interval, "reload", time.Minute, "how often to reload settings")

	return cmd
}
