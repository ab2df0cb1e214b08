package main

import (
	"bytes"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubMigrations(t *testing.T) *[]string {
	t.Helper()

	origUp, origDown, origVersion := migrateUp, migrateDown, migrationVersion
	t.Cleanup(func() {
		migrateUp, migrateDown, migrationVersion = origUp, origDown, origVersion
	})

	var calls []string
	migrateUp = func(*sql.DB) error {
		calls = append(calls, "up")
		return nil
	}
	migrateDown = func(_ *sql.DB, steps int) error {
		calls = append(calls, "down")
		if steps > 9 {
			return errors.New("migrate down: file does not exist")
		}
		return nil
	}
	migrationVersion = func(*sql.DB) (uint, bool, error) {
		calls = append(calls, "version")
		return 5, false, nil
	}
	return &calls
}

func TestRun(t *testing.T) {
	t.Run("Up", func(t *testing.T) {
		calls := stubMigrations(t)
		var out bytes.Buffer

		require.NoError(t, run(nil, "up", 1, &out))
		assert.Equal(t, []string{"up"}, *calls)
		assert.Contains(t, out.String(), "All migrations applied")
	})

	t.Run("Down", func(t *testing.T) {
		calls := stubMigrations(t)
		var out bytes.Buffer

		require.NoError(t, run(nil, "down", 2, &out))
		assert.Equal(t, []string{"down"}, *calls)
		assert.Contains(t, out.String(), "Rolled back 2 migration(s)")
	})

	t.Run("Down error", func(t *testing.T) {
		stubMigrations(t)

		err := run(nil, "down", 10, &bytes.Buffer{})
		assert.ErrorContains(t, err, "file does not exist")
	})

	t.Run("Down needs a positive step count", func(t *testing.T) {
		calls := stubMigrations(t)

		err := run(nil, "down", 0, &bytes.Buffer{})
		assert.ErrorContains(t, err, "steps must be at least 1")
		assert.Empty(t, *calls)
	})

	t.Run("Version", func(t *testing.T) {
		stubMigrations(t)
		var out bytes.Buffer

		require.NoError(t, run(nil, "version", 1, &out))
		assert.Equal(t, "version 5 (dirty: false)\n", out.String())
	})

	t.Run("Unknown mode", func(t *testing.T) {
		stubMigrations(t)

		err := run(nil, "sideways", 1, &bytes.Buffer{})
		assert.ErrorContains(t, err, "unknown mode: sideways")
	})
}
