// Package log provides qconsumer's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Records go through log/slog via a
// bridge handler that hands them to a Formatter and one or more Outputs.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("pool"), log.Int("concurrency", 4))
//	l.Info("pool started")
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level, text or
// JSON format, console/stdout/null output).
//
// # Interop
//
// RedirectStdLog routes the standard library logger (used by Pebble) through
// a Logger at info level.
package log
