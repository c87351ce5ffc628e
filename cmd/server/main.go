// Command server is the authme server: it owns the shared memory
// frame and the three named semaphores, serializes requests from
// clients one at a time, and optionally persists the user database to
// a file (spec.md §4/§6/§7).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eikendev/authme/internal/logging"
	"github.com/eikendev/authme/internal/server"
	"github.com/eikendev/authme/internal/userdb"
)

func main() {
	dbPath := flag.String("l", "", "path to a database file to load and persist to (memory-only if omitted)")
	logging.BindFlag(flag.CommandLine)
	flag.Parse()

	db := userdb.New()
	if *dbPath != "" {
		if err := db.Load(*dbPath); err != nil {
			fmt.Fprintf(os.Stderr, "authme: failed reading database: %v\n", err)
			os.Exit(1)
		}
	}

	srv, err := server.New(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authme: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "authme: %v\n", err)
		os.Exit(1)
	}
}
