package main

import (
	"fmt"
	"time"

	"github.com/pevans/dslreviews/review"
	"github.com/pevans/dslreviews/store"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file|url>...",
		Short: "Extract reviews from pages and save them in the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewStore, err := store.NewReviewStore(a.cfg.DSN)
			if err != nil {
				return fmt.Errorf("failed to open review store: %w", err)
			}
			defer reviewStore.Close()

			total := 0
			err = a.extractPages(cmd.Context(), args, func(target string, records []review.Record) error {
				saved, err := reviewStore.SaveRecords(target, records, time.Now())
				if err != nil {
					return fmt.Errorf("%s: %w", target, err)
				}
				a.log.Info().Str("page", target).Int("reviews", len(saved)).Msg("saved reviews")
				total += len(saved)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d reviews from %d pages into %s\n", total, len(args), a.cfg.DSN)
			return nil
		},
	}

	return cmd
}
