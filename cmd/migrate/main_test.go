package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskboard/taskboard/internal/infrastructure/config"
	"go.uber.org/zap"
)

func TestRun_CreateThenList(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, run(&out, zap.NewNop(), dir, []string{"create", "add_index", "Index", "by", "due"}))
	assert.Equal(t,
		filepath.Join(dir, "000001_add_index.up.sql")+"\n"+filepath.Join(dir, "000001_add_index.down.sql")+"\n",
		out.String())

	out.Reset()
	require.NoError(t, run(&out, zap.NewNop(), dir, []string{"list"}))
	assert.Equal(t, "000001_add_index\n", out.String())
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"unknown command", []string{"upgrade"}, `unknown command "upgrade"`},
		{"step without count", []string{"step"}, "usage: migrate step <n>"},
		{"create without name", []string{"create"}, "usage: migrate create <name> [description]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(&bytes.Buffer{}, zap.NewNop(), t.TempDir(), tt.argv)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestOpenMigrator_RequiresPostgres(t *testing.T) {
	_, err := openMigrator(&config.DatabaseConfig{Driver: config.DriverSQLite}, t.TempDir(), zap.NewNop())

	assert.ErrorContains(t, err, "versioned migrations need the postgres driver")
}

func TestMigrationsDir(t *testing.T) {
	dir := t.TempDir()

	got, err := migrationsDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	got, err = migrationsDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
