// Package log provides the logging port used by the sapphire client packages.
//
// The transport and batch layers never log through a global logger. They
// receive a Logger at construction and default to a no-op implementation, so
// embedding applications decide where client output goes.
//
// # Usage
//
// Wrap a zerolog logger:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	client, err := transport.New(target, transport.WithLogger(logger))
//
// Or build a console logger at a given level:
//
//	logger, err := log.NewConsoleLogger(os.Stderr, "debug")
//
// # Custom Loggers
//
// Implement the Logger interface to forward client events to an existing
// logging stack:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package log
