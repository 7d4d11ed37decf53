// Package logging provides structured logging for eve-log-alert.
//
// The engine logs through a [Logger] that wraps log/slog with a JSON handler.
// Child loggers carry the monitored character and the log stream they are
// processing, so a single debug log can be filtered per pilot:
//
//	logger, err := logging.NewLogger(logging.Options{Level: "debug", File: path})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithCharacter("Some Pilot").WithStream("game").Info("tailing", "path", p)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"tailing","character":"Some Pilot","stream":"game","path":"..."}
//
// When a file is configured, output goes through a [RotatingWriter] that
// rotates by size and keeps numbered backups (debug.log.1 is the newest).
// Without a file the logger writes to stderr.
//
// Tests use [NopLogger].
package logging
