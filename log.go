package ember

import (
	"log/slog"
	"os"
)

// emberLogLevel controls log verbosity for the package. Defaults to Info;
// tests and applications can lower it to Debug.
var emberLogLevel = new(slog.LevelVar)

// emberLogger is the package logger. Draw-call skips log at Warn, cache
// and initialization details at Debug.
var emberLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: emberLogLevel}))

// SetLogLevel adjusts the package log verbosity.
func SetLogLevel(level slog.Level) {
	emberLogLevel.Set(level)
}
