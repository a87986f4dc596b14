package main

import (
	"fmt"
	"maps"

	"github.com/pevans/dslreviews/export"
	"github.com/pevans/dslreviews/review"
	"github.com/pevans/dslreviews/store"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		format   string
		output   string
		source   string
		provider string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews saved in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.outputFormat(format)
			if err != nil {
				return err
			}

			reviewStore, err := store.NewReviewStore(a.cfg.DSN)
			if err != nil {
				return fmt.Errorf("failed to open review store: %w", err)
			}
			defer reviewStore.Close()

			filter := store.Filter{Limit: limit, Offset: offset}
			if source != "" {
				filter.Source = &source
			}
			if provider != "" {
				filter.Provider = &provider
			}

			stored, err := reviewStore.ListRecords(filter)
			if err != nil {
				return err
			}

			return writeTable(cmd.OutOrStdout(), output, storedTable(stored), f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv, json, or table")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&source, "source", "", "Only reviews imported from this page")
	cmd.Flags().StringVar(&provider, "provider", "", "Only reviews of this provider")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of reviews")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of reviews to skip")

	return cmd
}

// storedTable builds an export table with the stored review_date column.
func storedTable(stored []store.StoredReview) *export.Table {
	records := make([]review.Record, len(stored))
	for i, s := range stored {
		record := maps.Clone(s.Record)
		if s.ReviewDate != nil {
			record[review.FieldReviewDate] = *s.ReviewDate
		}
		records[i] = record
	}

	table := export.NewTable(records)
	table.Columns = append(table.Columns, review.FieldReviewDate)
	return table
}
