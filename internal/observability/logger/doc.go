// Package logger provides a singleton Zap logger with context-based scoping.
//
//   - Singleton: one global instance initialized with Init().
//   - Context scoping: each request can carry a scoped logger with extra
//     fields (request_id, account_id, ...) without building a new core.
//   - Environments: "dev" uses a colored console encoder, "prod" uses JSON.
//
// Initialization (once, in main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
// In handlers/services:
//
//	log := logger.From(ctx)
//	log.Info("license validated", logger.LicenseID(id))
package logger
