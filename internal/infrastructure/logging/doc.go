// Package logging builds the zap logger shared by every component.
//
// Production mode writes JSON; development mode writes colored console
// output with stack traces. Subsystems receive a *zap.Logger named with
// Component, and lines about a browsing context carry Window(id).
//
//	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)
//	nav := logger.Component("navigation")
//	nav.Info("Navigation committed", logging.Window(id), zap.String("url", href))
package logging
