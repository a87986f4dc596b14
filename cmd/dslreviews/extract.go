package main

import (
	"github.com/pevans/dslreviews/export"
	"github.com/pevans/dslreviews/review"
	"github.com/spf13/cobra"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		format       string
		output       string
		resolveDates bool
		nowFlag      string
	)

	cmd := &cobra.Command{
		Use:   "extract <file|url>...",
		Short: "Extract reviews from pages and write them as a table",
		Example: `  dslreviews extract page1.html page2.html -o reviews.csv
  dslreviews extract -f table --resolve-dates "https://www.dslreports.com/comments/1234"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.outputFormat(format)
			if err != nil {
				return err
			}
			now, err := parseNow(nowFlag)
			if err != nil {
				return err
			}

			var records []review.Record
			err = a.extractPages(cmd.Context(), args, func(_ string, pageRecords []review.Record) error {
				records = append(records, pageRecords...)
				return nil
			})
			if err != nil {
				return err
			}

			table := export.NewTable(records)
			if resolveDates {
				table = table.WithReviewDates(now)
			}

			a.log.Debug().Int("reviews", len(records)).Int("pages", len(args)).Msg("extracted reviews")
			return writeTable(cmd.OutOrStdout(), output, table, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv, json, or table")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&resolveDates, "resolve-dates", false, "Add a review_date column resolved from the review age")
	cmd.Flags().StringVar(&nowFlag, "now", "", "Resolve dates relative to this YYYY-MM-DD date instead of today")

	return cmd
}
