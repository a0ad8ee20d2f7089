// Package logging provides the shared zap logger for the module.
//
// Logging is silent by default so the library can be embedded without
// polluting a host application's output. Set LYNGDORF_LOG_LEVEL (or call
// Initialize with an explicit level) to enable console logging.
package logging
