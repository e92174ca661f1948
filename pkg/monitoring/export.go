package monitoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// ExportConfig selects where run metrics go once the run has finished.
// Both destinations are optional.
type ExportConfig struct {
	PushgatewayURL string
	Textfile       string
	Grouping       map[string]string
}

// Export pushes the registry to a Pushgateway and/or writes it in the
// node-exporter textfile format. Failures are joined and returned; metrics
// export never changes the outcome of a run.
func Export(ctx context.Context, cfg ExportConfig, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var errs []error

	if cfg.PushgatewayURL != "" {
		pusher := push.New(cfg.PushgatewayURL, ServiceName).Gatherer(gatherer)
		for k, v := range cfg.Grouping {
			pusher = pusher.Grouping(k, v)
		}
		if err := pusher.PushContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("pushing metrics to %s: %w", cfg.PushgatewayURL, err))
		} else {
			logger.Info("pushed metrics", "pushgateway", cfg.PushgatewayURL)
		}
	}

	if cfg.Textfile != "" {
		if err := prometheus.WriteToTextfile(cfg.Textfile, gatherer); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics textfile %s: %w", cfg.Textfile, err))
		} else {
			logger.Info("wrote metrics textfile", "path", cfg.Textfile)
		}
	}

	return errors.Join(errs...)
}
