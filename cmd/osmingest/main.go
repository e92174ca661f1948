package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/NERVsystems/osmingest/pkg/config"
	"github.com/NERVsystems/osmingest/pkg/core"
	"github.com/NERVsystems/osmingest/pkg/ingest"
	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/monitoring"
	"github.com/NERVsystems/osmingest/pkg/normalize"
	"github.com/NERVsystems/osmingest/pkg/osm"
	"github.com/NERVsystems/osmingest/pkg/store"
	"github.com/NERVsystems/osmingest/pkg/tracing"
	ver "github.com/NERVsystems/osmingest/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	logFormat       string
	configPath      string
	envFile         string

	// Overrides of the config file
	outputDir    string
	endpoint     string
	databaseURL  string
	categories   string
	allowPartial bool
	preflight    bool
	seed         uint64
	metricsFile  string
	healthReport bool
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored when missing)")

	flag.StringVar(&outputDir, "output", "", "Directory receiving the per-category JSON files")
	flag.StringVar(&endpoint, "endpoint", "", "Overpass API interpreter URL")
	flag.StringVar(&databaseURL, "database-url", "", "Postgres URL; also persists listings to the database when set")
	flag.StringVar(&categories, "categories", "", "Comma separated categories to ingest (default all)")
	flag.BoolVar(&allowPartial, "allow-partial", false, "Exit 0 when only some categories failed")
	flag.BoolVar(&preflight, "preflight", false, "Check dependencies before ingesting and abort when one is down")
	flag.Uint64Var(&seed, "seed", 0, "Seed for the placeholder rating sampler (0 seeds from the clock)")
	flag.StringVar(&metricsFile, "metrics-textfile", "", "Write run metrics to this node-exporter textfile")
	flag.BoolVar(&healthReport, "health", false, "Print the dependency health report as JSON and exit")
}

func main() {
	flag.Parse()

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	os.Exit(run())
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(logFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// applyFlags overrides cfg with the flags set on the command line
func applyFlags(cfg *config.Config, set map[string]bool) error {
	if set["output"] {
		cfg.OutputDir = outputDir
	}
	if set["endpoint"] {
		cfg.Overpass.Endpoint = endpoint
	}
	if set["database-url"] {
		cfg.Database.URL = databaseURL
	}
	if set["categories"] {
		cats, err := parseCategories(categories)
		if err != nil {
			return err
		}
		cfg.Categories = cats
	}
	if set["allow-partial"] {
		cfg.AllowPartial = allowPartial
	}
	if set["preflight"] {
		cfg.Preflight = preflight
	}
	if set["seed"] {
		cfg.Seed = seed
	}
	if set["metrics-textfile"] {
		cfg.Metrics.Textfile = metricsFile
	}
	return nil
}

func parseCategories(raw string) ([]listing.Category, error) {
	var out []listing.Category
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		c := listing.Category(part)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", part)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no categories in %q", raw)
	}
	return out, nil
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := applyFlags(cfg, set); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// installMonitoringHooks forwards Overpass client events to Prometheus
func installMonitoringHooks() {
	osm.SetMonitoringHooks(&osm.MonitoringHooks{
		OnResponse: func(service, operation string, duration time.Duration, success bool) {
			monitoring.RecordExternalServiceRequest(service, operation, duration, success)
		},
		OnRateLimit: func(service string, waitTime time.Duration) {
			monitoring.RecordRateLimitWait(service, waitTime)
		},
		OnRetry: func(service string, attempt int) {
			monitoring.RecordRetry(service)
		},
		OnCache: func(service string, hit bool) {
			if hit {
				monitoring.RecordCacheHit(service)
			} else {
				monitoring.RecordCacheMiss(service)
			}
		},
		OnError: func(service, errorType string) {
			monitoring.RecordError(service, errorType)
		},
	})
}

func newOverpassClient(cfg config.OverpassConfig, logger *slog.Logger) *osm.Client {
	retry := core.DefaultRetryOptions
	retry.MaxAttempts = cfg.MaxAttempts
	retry.InitialDelay = cfg.InitialBackoff
	retry.MaxDelay = cfg.MaxBackoff

	return osm.NewClient(osm.Options{
		Endpoint:   cfg.Endpoint,
		UserAgent:  cfg.UserAgent,
		HTTPClient: osm.NewHTTPClient(cfg.Timeout),
		Limiter:    osm.NewLimiter(cfg.RequestInterval, cfg.Burst),
		Retry:      retry,
		CacheSize:  cfg.CacheSize,
		CacheTTL:   cfg.CacheTTL,
		Logger:     logger,
	})
}

func run() int {
	logger := newLogger()
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return ingest.ExitFailed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Version:     ver.BuildVersion,
		Environment: cfg.Environment,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		// Continue without tracing - it's not critical
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()
		if cfg.Tracing.Endpoint != "" {
			logger.Info("OpenTelemetry tracing enabled", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	monitoring.RecordSystemInfo()
	installMonitoringHooks()

	client := newOverpassClient(cfg.Overpass, logger)
	health := monitoring.NewHealthChecker(monitoring.ServiceName, ver.BuildVersion)
	health.Register("overpass", true, client.CheckHealth)

	sampler := normalize.NewTimeSampler()
	if cfg.Seed != 0 {
		sampler = normalize.NewSampler(cfg.Seed)
	}

	opts := ingest.Options{
		Fetcher:      client,
		BBox:         cfg.BBox,
		Categories:   cfg.Selected(),
		Normalize:    normalize.Options{Sampler: sampler, Hours: normalize.DefaultHours, Region: cfg.Region},
		AllowPartial: cfg.AllowPartial,
		Logger:       logger,
	}
	// The run ID is fixed up front so the database rows carry it
	opts.RunID = uuid.NewString()

	var sinks store.Fanout

	if cfg.Database.URL != "" {
		pool, err := store.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return ingest.ExitFailed
		}
		defer pool.Close()

		health.Register("postgres", true, pool.Ping)

		pg := store.NewPostgresSink(pool, opts.RunID, logger)
		if cfg.Database.EnsureSchema {
			if err := pg.EnsureSchema(ctx); err != nil {
				logger.Error("failed to create schema", "error", err)
				return ingest.ExitFailed
			}
		}
		sinks = append(sinks, pg)
	}

	if healthReport {
		report := health.CheckAll(ctx)
		if err := report.WriteJSON(os.Stdout); err != nil {
			logger.Error("failed to write health report", "error", err)
		}
		if !report.Ready() {
			return ingest.ExitFailed
		}
		return ingest.ExitOK
	}

	// The file sink goes last so a failed database write keeps the previous file
	sinks = append(sinks, store.NewFileSink(cfg.OutputDir))
	if len(sinks) == 1 {
		opts.Sink = sinks[0]
	} else {
		opts.Sink = sinks
	}
	if cfg.Preflight {
		opts.Health = health
	}

	pipeline, err := ingest.New(opts)
	if err != nil {
		logger.Error("failed to create pipeline", "error", err)
		return ingest.ExitFailed
	}

	logger.Info("starting osmingest",
		"version", ver.BuildVersion,
		"run_id", pipeline.RunID(),
		"endpoint", client.Endpoint(),
		"output", cfg.OutputDir,
		"sink", opts.Sink.Name(),
	)

	summary := pipeline.Run(ctx)
	if err := summary.WriteTable(os.Stdout); err != nil {
		logger.Error("failed to print summary", "error", err)
	}

	exportCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := monitoring.Export(exportCtx, monitoring.ExportConfig{
		PushgatewayURL: cfg.Metrics.PushgatewayURL,
		Textfile:       cfg.Metrics.Textfile,
		Grouping:       cfg.Metrics.Grouping,
	}, monitoring.Registry, logger); err != nil {
		logger.Warn("failed to export metrics", "error", err)
	}

	return summary.ExitCode()
}
