package main

import (
	"fmt"
	"strings"

	"github.com/example/revtrack/internal/catalog"
	"github.com/example/revtrack/internal/config"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse subject catalogs",
	}
	cmd.AddCommand(catalogListCmd(), catalogShowCmd())
	return cmd
}

func catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			entries, err := catalog.LoadDir(cfg.CatalogDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No subjects in %s\n", cfg.CatalogDir)
				return nil
			}
			for _, e := range entries {
				fmt.Fprintln(out, e.Title)
			}
			return nil
		},
	}
}

func catalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <subject>",
		Short: "Print the units, topics and subtopics of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path, err := catalog.Find(cfg.CatalogDir, args[0])
			if err != nil {
				return err
			}
			c, err := catalog.LoadFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, c.Subject)
			for _, u := range c.Units {
				fmt.Fprintf(out, "  %s\n", u.Unit)
				for _, t := range u.Topics {
					fmt.Fprintf(out, "    %s: %s\n", t.Topic, strings.Join(t.Subtopics, ", "))
				}
			}
			return nil
		},
	}
}
