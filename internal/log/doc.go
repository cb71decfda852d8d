// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive attribute keys and secret shaped values
//   - Masking of text typed into password fields of captured screens
//   - Configurable log levels with verbose mode support
//
// UI captures are taken from test devices that are often logged in, so a
// dump may hold credentials typed into the screen. Node and change values
// logged through Node and Change never reveal the text of password fields.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("change found", "change", log.Change(rec))
package log
