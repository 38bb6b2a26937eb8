// Package logger provides the structured logging interface used across
// wowprofile.
//
// It wraps zerolog behind the Logger interface so that components can be
// handed a NewTestLogger or NewNopLogger in tests. Console output goes to
// stderr with colored levels; when a log file is configured, lines are
// written to both.
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.Info("Generating profile")
//	logger.WithField("kind", "mounts").Debug("Fetching summary")
//
// Component loggers usually carry a fixed field:
//
//	log := logger.GetLogger().WithField("component", "wowhead")
//	logger.LogRarity(log, "mount", 6, logger.RarityNoMatch)
package logger
