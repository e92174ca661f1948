// Package ingest runs the category steps of an ingestion run in order and
// isolates their failures from each other.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/osmingest/pkg/core"
	"github.com/NERVsystems/osmingest/pkg/geo"
	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/monitoring"
	"github.com/NERVsystems/osmingest/pkg/normalize"
	"github.com/NERVsystems/osmingest/pkg/osm"
	"github.com/NERVsystems/osmingest/pkg/osm/queries"
	"github.com/NERVsystems/osmingest/pkg/store"
	"github.com/NERVsystems/osmingest/pkg/synthetic"
	"github.com/NERVsystems/osmingest/pkg/tracing"
)

// normalizers maps each network category to its normalizer
var normalizers = map[listing.Category]func([]osm.Element, normalize.Options) []listing.Record{
	listing.Hotels: func(e []osm.Element, o normalize.Options) []listing.Record {
		return listing.Records(normalize.Hotels(e, o))
	},
	listing.Restaurants: func(e []osm.Element, o normalize.Options) []listing.Record {
		return listing.Records(normalize.Restaurants(e, o))
	},
	listing.Attractions: func(e []osm.Element, o normalize.Options) []listing.Record {
		return listing.Records(normalize.Attractions(e, o))
	},
	listing.Sports: func(e []osm.Element, o normalize.Options) []listing.Record {
		return listing.Records(normalize.Sports(e, o))
	},
}

// Options configures a Pipeline
type Options struct {
	// Fetcher runs Overpass queries
	Fetcher osm.Fetcher

	// Sink receives each category's records
	Sink store.Sink

	// BBox is the ingestion area
	BBox geo.BoundingBox

	// Categories restricts the run; empty means all, always in processing order
	Categories []listing.Category

	// Normalize carries the sampler, opening hours parser and region
	Normalize normalize.Options

	// AllowPartial makes a run with some failed categories exit 0
	AllowPartial bool

	// Health, when set, is checked before any category runs
	Health *monitoring.HealthChecker

	// RunID tags the run in logs, traces and the database; generated when empty
	RunID string

	// Now is the reference time of synthetic records
	Now func() time.Time

	Logger *slog.Logger
}

// Pipeline is one configured ingestion run
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// New creates a pipeline, filling unset options with defaults
func New(opts Options) (*Pipeline, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("ingest: fetcher is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("ingest: sink is required")
	}
	if opts.BBox == (geo.BoundingBox{}) {
		opts.BBox = queries.KolkataBounds
	}
	if err := opts.BBox.Validate(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if len(opts.Categories) == 0 {
		opts.Categories = listing.All()
	}
	for _, c := range opts.Categories {
		if !c.Valid() {
			return nil, fmt.Errorf("ingest: unknown category %q", c)
		}
	}
	opts.Normalize = opts.Normalize.WithDefaults()
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Pipeline{
		opts:   opts,
		logger: opts.Logger.With("run_id", opts.RunID),
	}, nil
}

// RunID returns the identifier of the run
func (p *Pipeline) RunID() string {
	return p.opts.RunID
}

// Run executes every selected category in order. Failures are recorded per
// step; a cancelled context marks the remaining steps cancelled.
func (p *Pipeline) Run(ctx context.Context) *Summary {
	started := time.Now()
	summary := &Summary{
		RunID:        p.opts.RunID,
		Started:      started,
		AllowPartial: p.opts.AllowPartial,
	}

	ctx, span := tracing.StartSpan(ctx, "ingest.run",
		trace.WithAttributes(attribute.String(tracing.AttrRunID, p.opts.RunID)),
	)
	defer span.End()

	p.logger.Info("starting ingestion run",
		"categories", p.opts.Categories,
		"bbox", p.opts.BBox.OverpassString(),
	)

	if err := p.preflight(ctx); err != nil {
		summary.Err = err
		for _, c := range p.ordered() {
			summary.Steps = append(summary.Steps, StepResult{Category: c, Status: StepSkipped})
		}
		return p.finish(ctx, span, summary)
	}

	for _, c := range p.ordered() {
		if err := ctx.Err(); err != nil {
			summary.Steps = append(summary.Steps, StepResult{Category: c, Status: StepCancelled, Err: err})
			continue
		}
		summary.Steps = append(summary.Steps, p.runStep(ctx, c))
	}

	return p.finish(ctx, span, summary)
}

func (p *Pipeline) finish(ctx context.Context, span trace.Span, summary *Summary) *Summary {
	summary.Duration = time.Since(summary.Started)
	code := summary.ExitCode()

	monitoring.RecordRun(time.Now(), summary.Duration, code == 0 && len(summary.Failed()) == 0)

	span.SetAttributes(attribute.Int("ingest.exit_code", code))
	switch {
	case summary.Err != nil:
		tracing.RecordError(ctx, "preflight", summary.Err)
	case code != 0:
		tracing.SetStatus(ctx, codes.Error, fmt.Sprintf("run finished with exit code %d", code))
	default:
		tracing.SetStatus(ctx, codes.Ok, "")
	}

	p.logger.Info("ingestion run finished",
		"duration", summary.Duration,
		"failed", len(summary.Failed()),
		"exit_code", code,
	)
	return summary
}

func (p *Pipeline) preflight(ctx context.Context) error {
	if p.opts.Health == nil {
		return nil
	}

	health := p.opts.Health.CheckAll(ctx)
	for _, c := range health.Failed() {
		p.logger.Warn("preflight check failed",
			"dependency", c.Name,
			"required", c.Required,
			"error", c.Error,
		)
	}
	if !health.Ready() {
		monitoring.RecordError("preflight", "dependency_unavailable")
		return fmt.Errorf("preflight failed: %s", health.Status)
	}
	return nil
}

// ordered returns the selected categories in processing order
func (p *Pipeline) ordered() []listing.Category {
	want := make(map[listing.Category]bool, len(p.opts.Categories))
	for _, c := range p.opts.Categories {
		want[c] = true
	}
	var out []listing.Category
	for _, c := range listing.All() {
		if want[c] {
			out = append(out, c)
		}
	}
	return out
}

func (p *Pipeline) runStep(ctx context.Context, category listing.Category) StepResult {
	ctx, span := tracing.StartSpan(ctx, "ingest.category",
		trace.WithAttributes(attribute.String(tracing.AttrCategory, string(category))),
	)
	defer span.End()

	logger := p.logger.With("category", category)
	start := time.Now()

	result := StepResult{Category: category}
	records, err := p.collect(ctx, category, &result)
	if err == nil {
		err = p.opts.Sink.Write(ctx, category, records)
		if err != nil {
			err = fmt.Errorf("persisting %s to %s: %w", category, p.opts.Sink.Name(), err)
		}
	}
	result.Duration = time.Since(start)

	switch {
	case err == nil:
		result.Status = StepSuccess
	case errors.Is(err, context.Canceled):
		result.Status = StepCancelled
	default:
		result.Status = StepFailed
	}
	result.Err = err

	ineligible, unnamed := 0, 0
	if category.Network() {
		ineligible = result.Fetched - result.Eligible
		unnamed = max(result.Eligible-result.Emitted, 0)
	}
	monitoring.RecordCategory(string(category), result.Status.metricStatus(), result.Duration,
		result.Fetched, ineligible, unnamed, result.Emitted)
	tracing.SetAttributes(ctx, tracing.CategoryAttributes(string(category), result.Fetched, result.Eligible, result.Emitted)...)
	tracing.SetAttributes(ctx, attribute.String(tracing.AttrStepStatus, string(result.Status)))

	if err != nil {
		errType := string(core.Code(err))
		if errType == "" {
			errType = string(result.Status)
		}
		monitoring.RecordError("ingest", errType)
		tracing.RecordError(ctx, errType, err)
		logger.Error("category failed",
			"error", err,
			"status", result.Status,
			"duration", result.Duration,
		)
		return result
	}

	tracing.SetStatus(ctx, codes.Ok, "")
	logger.Info("category complete",
		"fetched", result.Fetched,
		"eligible", result.Eligible,
		"emitted", result.Emitted,
		"dropped", result.Dropped(),
		"duration", result.Duration,
	)
	return result
}

// collect fetches and normalizes one category, filling the counters of result
func (p *Pipeline) collect(ctx context.Context, category listing.Category, result *StepResult) ([]listing.Record, error) {
	switch category {
	case listing.Events:
		events := synthetic.Events(p.opts.Now(), p.opts.Normalize.Sampler)
		result.Emitted = len(events)
		return listing.Records(events), nil
	case listing.Promotions:
		promos := synthetic.Promotions(p.opts.Now(), p.opts.Normalize.Sampler)
		result.Emitted = len(promos)
		return listing.Records(promos), nil
	}

	normalizer, ok := normalizers[category]
	if !ok {
		return nil, fmt.Errorf("no normalizer for category %q", category)
	}

	query, err := queries.ForCategory(category, p.opts.BBox)
	if err != nil {
		return nil, err
	}

	elements, err := p.opts.Fetcher.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", category, err)
	}

	result.Fetched = len(elements)
	elements = within(elements, p.opts.BBox)
	records := normalizer(elements, p.opts.Normalize)
	result.Eligible = normalize.CountEligible(elements)
	result.Emitted = len(records)
	return records, nil
}

// within drops elements located outside bbox. Overpass also returns the
// member nodes of matching ways, which may lie past the edge. Elements
// without any coordinate are kept and left to the normalizers.
func within(elements []osm.Element, bbox geo.BoundingBox) []osm.Element {
	out := make([]osm.Element, 0, len(elements))
	for _, e := range elements {
		switch {
		case e.HasCoordinates():
			if !bbox.Contains(*e.Lat, *e.Lon) {
				continue
			}
		case e.Center != nil:
			if !bbox.Contains(e.Center.Lat, e.Center.Lon) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}
