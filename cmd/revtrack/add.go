package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/revtrack/internal/catalog"
	"github.com/example/revtrack/internal/commands"
	"github.com/example/revtrack/internal/store"
	"github.com/example/revtrack/pkg/models"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		subject   string
		topic     string
		subtopics []string
		refs      []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule revisions for studied subtopics",
		Example: `  revtrack add --subject economics --select "Demand/Elasticity" --select Supply
  revtrack add --subject Economics --topic Demand --subtopic Elasticity --subtopic "Law of demand"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var selections []models.Selection
			if topic != "" {
				for _, s := range subtopics {
					selections = append(selections, models.Selection{Subject: subject, Topic: topic, Subtopic: s})
				}
			} else if len(refs) > 0 {
				c, err := loadCatalog(ctx, a, subject)
				if err != nil {
					return fmt.Errorf("failed to load topics: %w", err)
				}
				selections, err = c.Select(refs)
				if err != nil {
					return err
				}
			}

			res, err := a.dispatcher.Dispatch(ctx, commands.Command{
				Kind:       commands.AddRevision,
				Selections: selections,
			})
			if errors.Is(err, store.ErrEmptySelection) {
				return errors.New("please select at least one subtopic to revise")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, item := range res.Created {
				fmt.Fprintf(out, "Added %d: %s (%s) [%s], first revision on %s\n",
					item.ID, item.Topic, item.Subject, strings.Join(item.Subtopics, ", "),
					formatDate(*item.NextRevision, a.loc))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "subject title or catalog file")
	cmd.Flags().StringVar(&topic, "topic", "", "topic name, for subtopics not taken from a catalog")
	cmd.Flags().StringArrayVar(&subtopics, "subtopic", nil, "subtopic studied under --topic (repeatable)")
	cmd.Flags().StringArrayVar(&refs, "select", nil, `catalog reference "topic/subtopic" or "topic" (repeatable)`)
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

// loadCatalog finds the subject's catalog in the catalog directory, or
// fetches it from the catalog URL when one is configured
func loadCatalog(ctx context.Context, a *app, subject string) (*catalog.Catalog, error) {
	if a.cfg.CatalogURL != "" {
		name := subject
		if !catalog.Supported(name) {
			name = strings.ToLower(name) + ".json"
		}
		url := strings.TrimSuffix(a.cfg.CatalogURL, "/") + "/" + name
		return catalog.NewFetcher(30*time.Second).Fetch(ctx, url)
	}

	path, err := catalog.Find(a.cfg.CatalogDir, subject)
	if err != nil {
		return nil, err
	}
	return catalog.LoadFile(path)
}
