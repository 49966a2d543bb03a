// Package log provides slog loggers that never write credentials.
//
// SecureHandler wraps any slog.Handler and:
//   - masks attributes whose key names a credential (cookie, authorization,
//     x-api-key, anything containing "token", "secret", "password", ...)
//   - masks values that are credentials by themselves (bearer and basic
//     authorization values, JWTs)
//   - scrubs "user:password@" and credential query parameters out of URLs
//     that appear in messages, string values and errors
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("page skipped",
//	    "url", "https://user:pw@example.com/?token=abc", // logged as https://***REDACTED***@example.com/?token=***REDACTED***
//	    "cookie", "session=abc123",                      // logged as ***REDACTED***
//	)
package log
