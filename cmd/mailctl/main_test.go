package main

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	app := newApp()

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"migrate", "seed", "staff", "sessions"}, names)
	require.Len(t, app.Command("staff").Subcommands, 1)
	assert.Equal(t, "add", app.Command("staff").Subcommands[0].Name)
	require.Len(t, app.Command("sessions").Subcommands, 1)
	assert.Equal(t, "prune", app.Command("sessions").Subcommands[0].Name)
}

func TestExecFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	file := filepath.Join(t.TempDir(), "customers.sql")
	sql := "INSERT INTO customers (full_name, phone) VALUES ('Alice', '91234567');"
	require.NoError(t, os.WriteFile(file, []byte(sql), 0o644))

	mock.ExpectExec(regexp.QuoteMeta(sql)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, execFile(context.Background(), db, file))
	assert.NoError(t, mock.ExpectationsWereMet())

	err = execFile(context.Background(), db, filepath.Join(t.TempDir(), "missing.sql"))
	assert.ErrorContains(t, err, "failed to read")
}
