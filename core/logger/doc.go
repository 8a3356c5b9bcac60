// Package logger builds the zap loggers used across catalog-sync.
//
// Level "debug" selects zap's development config, anything else the production
// config at the parsed level. Format "console" switches to colored console output
// for terminals; the default is JSON.
//
// Two helpers attach correlation fields:
//   - WithRayID copies the ray_id set by the rayid middleware from a Fiber context.
//   - WithRun tags the entries of a single reconciliation run with its run_id.
//
// Usage:
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
