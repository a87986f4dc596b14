package main

import (
	"fmt"
	"strings"

	"github.com/pevans/dslreviews/review"
	"github.com/spf13/cobra"
)

func newResolveCmd(a *app) *cobra.Command {
	var nowFlag string

	cmd := &cobra.Command{
		Use:   "resolve <elapsed time>",
		Short: `Convert an age such as "3 days" or "2 years" into a date`,
		Example: `  dslreviews resolve 3 days
  dslreviews resolve "2 years" --now 2024-01-10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(nowFlag)
			if err != nil {
				return err
			}

			elapsed := strings.Join(args, " ")
			date, ok := review.ResolveElapsed(elapsed, now)
			if !ok {
				return fmt.Errorf("unrecognized elapsed time %q: expected <number> day(s) or <number> year(s)", elapsed)
			}

			fmt.Fprintln(cmd.OutOrStdout(), date)
			return nil
		},
	}

	cmd.Flags().StringVar(&nowFlag, "now", "", "Resolve relative to this YYYY-MM-DD date instead of today")

	return cmd
}
