// Package logger builds log/slog loggers for the service and provides
// attribute helpers so that keys stay consistent across packages.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "restock"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
package logger
