// Package logging provides opt-in file-based logging with rotation for readyctl.
// When --debug is set, or logging.level is configured, structured JSON logs are
// written to ~/.readyctl/logs/ for troubleshooting a run after the fact.
//
// Without either, log records are discarded so the report owns stdout and stderr.
package logging
