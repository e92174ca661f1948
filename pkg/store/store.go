// Package store persists normalized listings.
package store

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/osmingest/pkg/listing"
)

// Sink receives the complete record set of one category.
// A successful Write replaces whatever the sink held for that category.
type Sink interface {
	Write(ctx context.Context, category listing.Category, records []listing.Record) error
	Name() string
}

// Fanout writes each category to several sinks. All sinks but the last are
// written concurrently; the last one is written only once they all succeeded,
// so a failure elsewhere leaves it untouched. Put the FileSink last.
type Fanout []Sink

// Write implements Sink and returns the first error
func (f Fanout) Write(ctx context.Context, category listing.Category, records []listing.Record) error {
	if len(f) == 0 {
		return nil
	}
	head, last := f[:len(f)-1], f[len(f)-1]

	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range head {
		g.Go(func() error {
			if err := sink.Write(gctx, category, records); err != nil {
				return fmt.Errorf("%s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := last.Write(ctx, category, records); err != nil {
		return fmt.Errorf("%s: %w", last.Name(), err)
	}
	return nil
}

// Name implements Sink
func (f Fanout) Name() string {
	names := make([]string, len(f))
	for i, s := range f {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}
