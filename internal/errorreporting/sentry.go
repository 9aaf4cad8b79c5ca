// Package errorreporting wires panic and error capture to Sentry. Events
// are scrubbed before leaving the process: raw queries are user-typed text
// and the predictor key must never appear in a report.
package errorreporting

import (
	"fmt"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/config"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/secrets"
)

var scrubPatterns = []*regexp.Regexp{
	// Groq-style API keys
	regexp.MustCompile(`gsk_[a-zA-Z0-9]{16,}`),
	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{16,}`),
	// key=value style secrets
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret)["\s:=]+[a-zA-Z0-9_-]{16,}`),
	// Email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	// IP addresses
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
}

// Init starts the Sentry client when a DSN is configured. Without one the
// whole package degrades to no-ops.
func Init(environment string) error {
	cfg := config.Load()
	if cfg.SentryDSN == "" {
		return nil
	}

	release := cfg.SentryRelease
	if release == "" {
		release = "dev"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      environment,
		Release:          release,
		TracesSampleRate: cfg.SentrySampleRate,
		BeforeSend:       beforeSend,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("initializing sentry: %w", err)
	}

	logger.Info("error reporting enabled",
		"dsn", secrets.MaskURL(cfg.SentryDSN), "environment", environment, "release", release)
	return nil
}

// beforeSend scrubs every outgoing event. Query strings are dropped
// wholesale: search queries ride in the URL and belong to the user.
func beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	for i := range event.Exception {
		event.Exception[i].Value = scrub(event.Exception[i].Value)
	}
	if event.Message != "" {
		event.Message = scrub(event.Message)
	}
	for key, value := range event.Extra {
		if str, ok := value.(string); ok {
			event.Extra[key] = scrub(str)
		}
	}
	if event.Request != nil {
		if event.Request.Headers != nil {
			delete(event.Request.Headers, "Authorization")
			delete(event.Request.Headers, "Cookie")
		}
		event.Request.QueryString = ""
	}
	return event
}

func scrub(text string) string {
	for _, pattern := range scrubPatterns {
		text = pattern.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}

// ScrubPII applies the outgoing-event scrub rules to an arbitrary string.
// The recovery middleware runs stack traces through this before capture.
func ScrubPII(text string) string {
	return scrub(text)
}

// IsSentryEnabled reports whether a DSN was configured at startup.
func IsSentryEnabled() bool {
	return config.Load().SentryDSN != ""
}

// Flush blocks until buffered events are delivered or the timeout passes.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
