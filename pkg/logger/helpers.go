package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RarityOutcome classifies the result of one rarity lookup.
type RarityOutcome string

const (
	RarityFound       RarityOutcome = "found"
	RarityCached      RarityOutcome = "cached"
	RarityNoMatch     RarityOutcome = "no_match"
	RarityFetchFailed RarityOutcome = "fetch_failed"
	RarityOutOfRange  RarityOutcome = "out_of_range"
)

// LogRequest logs one completed HTTP request on l.
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}

	switch {
	case statusCode >= 500:
		l.WarnWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.DebugWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogPipeline logs the end of one collection pipeline.
func LogPipeline(l Logger, kind string, count int, duration time.Duration) {
	l.InfoWithFields("Collection fetched", map[string]interface{}{
		"kind":     kind,
		"count":    count,
		"duration": duration,
	})
}

// LogRarity logs the outcome of one rarity lookup at debug level.
func LogRarity(l Logger, kind string, id int, outcome RarityOutcome) {
	l.DebugWithFields("Rarity lookup", map[string]interface{}{
		"kind":    kind,
		"id":      id,
		"outcome": string(outcome),
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
