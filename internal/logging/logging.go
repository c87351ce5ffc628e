// Package logging provides debug logging utilities for authme.
package logging

import (
	"flag"
	"log"
)

// DebugEnabled controls whether Debug() produces output. Both
// cmd/server and cmd/client bind this to their own -debug flag via
// BindFlag rather than consulting an environment variable (spec.md
// §6: "no environment variables are consulted").
var DebugEnabled bool

// BindFlag registers the -debug flag on fs and ties it directly to
// DebugEnabled, so every command's main only needs flag.Parse and a
// single shared place defines the flag's name and usage string.
func BindFlag(fs *flag.FlagSet) {
	fs.BoolVar(&DebugEnabled, "debug", false, "enable debug logging")
}

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}
