// Package core provides shared transport utilities for the ingestion pipeline.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/osmingest/pkg/tracing"
)

// RetryOptions configures retry behavior for HTTP requests
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// OnRetry is called before sleeping ahead of attempt number `attempt` (1-based)
	OnRetry func(attempt int, delay time.Duration, lastErr error)
}

// DefaultRetryOptions provides sensible defaults for the public Overpass API
var DefaultRetryOptions = RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Second,
	MaxDelay:     30 * time.Second,
	Multiplier:   2.0,
}

// DefaultClient provides a pre-configured HTTP client
var DefaultClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// Limiter paces outgoing requests. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// RequestFactory is a function that creates a new HTTP request.
// A fresh request per attempt allows retrying requests with bodies.
type RequestFactory func(ctx context.Context) (*http.Request, error)

// maxErrorBody bounds how much of an error response is kept for diagnostics
const maxErrorBody = 512

// ResponseHandler consumes a 2xx response body. The body is closed after it returns.
type ResponseHandler func(resp *http.Response) error

// WithRetryFactory performs HTTP requests created by a factory with pacing and
// exponential backoff, handing every 2xx response to handle. Reading the body
// is part of the attempt: a handler error caused by a timeout is retried as
// SERVICE_TIMEOUT, any other handler error is returned as is. Non-retryable
// failures are returned immediately.
func WithRetryFactory(ctx context.Context, factory RequestFactory, client *http.Client, limiter Limiter, options RetryOptions, handle ResponseHandler) error {
	ctx, span := tracing.StartSpan(ctx, "http.request",
		trace.WithAttributes(
			attribute.Int("http.retry.max_attempts", options.MaxAttempts),
		),
	)
	defer span.End()

	if client == nil {
		client = DefaultClient
	}
	if options.MaxAttempts < 1 {
		options.MaxAttempts = 1
	}

	logger := slog.Default()
	delay := options.InitialDelay
	var lastErr error

	for attempt := 0; attempt < options.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := delay
			if ra := retryAfter(lastErr); ra > wait {
				wait = ra
			}
			if options.MaxDelay > 0 && wait > options.MaxDelay {
				wait = options.MaxDelay
			}

			tracing.AddEvent(ctx, "retry_attempt",
				trace.WithAttributes(
					attribute.Int("attempt", attempt+1),
					attribute.Int64("delay_ms", wait.Milliseconds()),
					attribute.String("error", fmt.Sprintf("%v", lastErr)),
				),
			)
			logger.Info("retrying request",
				"attempt", attempt+1,
				"max_attempts", options.MaxAttempts,
				"delay", wait,
				"last_error", lastErr,
			)
			if options.OnRetry != nil {
				options.OnRetry(attempt+1, wait, lastErr)
			}

			if err := sleep(ctx, wait); err != nil {
				span.SetStatus(codes.Error, "request cancelled")
				return err
			}

			delay = nextDelay(delay, options)
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				span.SetStatus(codes.Error, "rate limiter wait failed")
				return fmt.Errorf("waiting for rate limiter: %w", err)
			}
		}

		req, err := factory(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "request creation failed")
			return NewError(ErrInternalError, "failed to create request").WithCause(err)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				span.SetStatus(codes.Error, "request cancelled")
				return ctxErr
			}
			lastErr = NewError(ErrNetworkError, "request failed").WithCause(err)
			logger.Error("request failed",
				"error", err,
				"attempt", attempt+1,
				"url", req.URL.String(),
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			err := handleBody(resp, handle)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					span.SetStatus(codes.Error, "request cancelled")
					return ctxErr
				}
				if !isTimeout(err) {
					span.RecordError(err)
					span.SetStatus(codes.Error, "response handling failed")
					return err
				}
				lastErr = NewError(ErrServiceTimeout, "timed out reading response body").
					WithGuidance("The server was too slow to send the result. Try a smaller bounding box.").
					WithCause(err)
				logger.Error("response body timed out",
					"error", err,
					"attempt", attempt+1,
					"url", req.URL.String(),
				)
				continue
			}

			span.SetAttributes(
				attribute.String(tracing.AttrHTTPMethod, req.Method),
				attribute.String("http.host", req.URL.Host),
				attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode),
				attribute.Int("http.retry.attempts", attempt+1),
			)
			span.SetStatus(codes.Ok, "")
			logger.Debug("request successful",
				"status", resp.StatusCode,
				"content_length", resp.ContentLength,
				"url", req.URL.String(),
			)
			return nil
		}

		lastErr = statusError(resp)
		logger.Error("request returned error status",
			"status", resp.StatusCode,
			"attempt", attempt+1,
			"url", req.URL.String(),
		)
		if !IsRetryable(lastErr) {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "request failed")
	span.SetAttributes(attribute.String("http.retry.final_error", fmt.Sprintf("%v", lastErr)))
	return lastErr
}

// handleBody runs handle on resp and always drains and closes the body
func handleBody(resp *http.Response, handle ResponseHandler) error {
	defer resp.Body.Close()
	if handle == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	return handle(resp)
}

// isTimeout reports whether err was caused by a deadline, including the
// http.Client timeout firing while the body is read
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// statusError drains and closes a non-2xx response, converting it to a coded error
func statusError(resp *http.Response) error {
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := fmt.Sprintf("HTTP status %d", resp.StatusCode)
	if s := strings.TrimSpace(string(snippet)); s != "" {
		msg = fmt.Sprintf("%s: %s", msg, s)
	}

	err := ServiceError("HTTP", resp.StatusCode, msg)
	if d := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); d > 0 {
		return &retryAfterError{IngestError: err, after: d}
	}
	return err
}

// retryAfterError carries the server-requested delay alongside the coded error
type retryAfterError struct {
	*IngestError
	after time.Duration
}

func (e *retryAfterError) Unwrap() error { return e.IngestError }

func retryAfter(err error) time.Duration {
	var ra *retryAfterError
	if errors.As(err, &ra) {
		return ra.after
	}
	return 0
}

// parseRetryAfter understands both delta-seconds and HTTP-date forms
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func nextDelay(delay time.Duration, options RetryOptions) time.Duration {
	multiplier := options.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	next := time.Duration(float64(delay) * multiplier)
	if options.MaxDelay > 0 && next > options.MaxDelay {
		next = options.MaxDelay
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
