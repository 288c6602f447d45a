package main

import (
	"fmt"

	"github.com/example/revtrack/internal/catalog"
	"github.com/example/revtrack/internal/config"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	ic := catalog.DefaultImportConfig()

	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Convert a spreadsheet of subtopics into subject catalogs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ic.FilePath = args[0]
			result, err := catalog.Import(ic)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range result.Catalogs {
				path, err := catalog.WriteJSON(cfg.CatalogDir, c)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			fmt.Fprintf(out, "Processed %d rows, skipped %d, %d errors\n",
				result.TotalProcessed, result.Skipped, len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintln(out, e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ic.SheetName, "sheet", ic.SheetName, "sheet to import (Excel only)")
	cmd.Flags().IntVar(&ic.StartRow, "start-row", ic.StartRow, "first row to import, 1-based")
	cmd.Flags().StringVar(&ic.SubjectColumn, "subject-col", ic.SubjectColumn, "subject column")
	cmd.Flags().StringVar(&ic.UnitColumn, "unit-col", ic.UnitColumn, "unit column")
	cmd.Flags().StringVar(&ic.TopicColumn, "topic-col", ic.TopicColumn, "topic column")
	cmd.Flags().StringVar(&ic.SubtopicColumn, "subtopic-col", ic.SubtopicColumn, "subtopic column")

	return cmd
}
