package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.toml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddThenList(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "Pagar", "luz", "-p", "p1", "--description", "antes del viernes")
	require.NoError(t, err)
	assert.Contains(t, out, "added [ ]")
	assert.Contains(t, out, "P1 Pagar luz")
	assert.FileExists(t, filepath.Join(dir, "totwist.db"))

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Hoy (1)")
	assert.Contains(t, out, "Prioridad 1")
	assert.Contains(t, out, "Pagar luz")
	assert.Contains(t, out, "last saved ")

	out, err = run(t, dir, "list", "--route", "all", "--query", "nada")
	require.NoError(t, err)
	assert.Contains(t, out, "Todas (0)")
}

func TestAddScheduledShowsInCalendar(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "add", "Revisión", "--when", "scheduled", "--due", "20/10/2030 09:00")
	require.NoError(t, err)

	out, err := run(t, dir, "cal", "--date", "15/10/2030")
	require.NoError(t, err)
	assert.Contains(t, out, "octubre 2030")
	assert.Contains(t, out, "20*")
	assert.Contains(t, out, "Revisión")

	out, err = run(t, dir, "cal", "--mode", "day", "--date", "21/10/2030")
	require.NoError(t, err)
	assert.NotContains(t, out, "Revisión")
}

func TestEphemeralDoesNotPersist(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "--ephemeral", "add", "Borrador")
	require.NoError(t, err)

	out, err := run(t, dir, "list", "--route", "all")
	require.NoError(t, err)
	assert.NotContains(t, out, "Borrador")
}

func TestListOmitsLastSavedBeforeFirstWrite(t *testing.T) {
	out, err := run(t, t.TempDir(), "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "last saved")
}

func TestPurgeReportsCount(t *testing.T) {
	out, err := run(t, t.TempDir(), "purge")
	require.NoError(t, err)
	assert.Equal(t, "purged 0 tasks\n", out)
}

func TestBadFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "add", "x", "-p", "P9")
	assert.Error(t, err)

	_, err = run(t, dir, "add", "x", "--due", "pronto")
	assert.Error(t, err)

	_, err = run(t, dir, "list", "--route", "inbox")
	assert.Error(t, err)

	_, err = run(t, dir, "cal", "--mode", "year")
	assert.Error(t, err)
}

func TestDBFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "other", "tasks.db")

	_, err := run(t, dir, "--db", db, "add", "Otra")
	require.NoError(t, err)
	assert.FileExists(t, db)
}
