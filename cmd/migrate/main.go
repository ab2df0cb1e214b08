package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"miaumarket-be/internal/config"
	"miaumarket-be/internal/db"
)

// Swapped in tests.
var (
	migrateUp        = db.MigrateUp
	migrateDown      = db.MigrateDown
	migrationVersion = db.MigrationVersion
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up, down or version")
	steps := flag.Int("steps", 1, "number of migrations to roll back with -mode=down")
	flag.Parse()

	cfg := config.LoadConfig()

	conn := db.InitDB(cfg)
	defer conn.Close()

	if err := run(conn, *mode, *steps, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(conn *sql.DB, mode string, steps int, out io.Writer) error {
	switch mode {
	case "up":
		if err := migrateUp(conn); err != nil {
			return err
		}
		fmt.Fprintln(out, "✅ All migrations applied.")
	case "down":
		if steps < 1 {
			return fmt.Errorf("steps must be at least 1, got %d", steps)
		}
		if err := migrateDown(conn, steps); err != nil {
			return err
		}
		fmt.Fprintf(out, "🧹 Rolled back %d migration(s).\n", steps)
	case "version":
		v, dirty, err := migrationVersion(conn)
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		fmt.Fprintf(out, "version %d (dirty: %t)\n", v, dirty)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'version')", mode)
	}
	return nil
}
