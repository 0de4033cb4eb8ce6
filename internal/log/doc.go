// Package log provides secure logging built on the standard slog package.
//
// Project files routinely embed database passwords, service tokens and
// authentication config ids in layer data sources. SecureHandler masks
// them before any record reaches the output:
//   - values of sensitive keys (password, token, authcfg, …) are replaced
//   - secret-looking values (JWT, bearer and basic credentials) are replaced
//   - data source URIs keep their shape with only the secret parts masked
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("layer source unreadable", "source", layer.Source())
//	slog.SetDefault(logger)
package log
