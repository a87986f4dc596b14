package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pevans/dslreviews/export"
	"github.com/pevans/dslreviews/page"
	"github.com/pevans/dslreviews/review"
)

// extractPages loads every target and extracts its reviews. Pages without
// reviews are logged and skipped; load failures stop the run.
func (a *app) extractPages(ctx context.Context, targets []string, each func(target string, records []review.Record) error) error {
	opts := page.DefaultOptions()
	opts.Timeout = a.cfg.FetchTimeout
	opts.UserAgent = a.cfg.UserAgent

	for _, target := range targets {
		doc, err := page.Load(ctx, target, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}

		pageLog := a.log.With().Str("page", target).Logger()
		reviews, err := review.NewExtractor(pageLog).Extract(doc)
		if errors.Is(err, review.ErrNoReviews) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}

		if err := each(target, review.Records(reviews)); err != nil {
			return err
		}
	}
	return nil
}

// outputFormat resolves the format flag, falling back to the config.
func (a *app) outputFormat(flag string) (export.Format, error) {
	if flag == "" {
		flag = a.cfg.Format
	}
	return export.ParseFormat(flag)
}

// parseNow returns today unless a YYYY-MM-DD date is given.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	now, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now date %q: %w", s, err)
	}
	return now, nil
}

// writeTable writes t to path, or to stdout when path is empty.
func writeTable(stdout io.Writer, path string, t *export.Table, f export.Format) error {
	if path == "" {
		return export.Write(stdout, t, f)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := export.Write(out, t, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
