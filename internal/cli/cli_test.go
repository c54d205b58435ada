package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"taskdeck/internal/task"
)

func run(t *testing.T, configPath, user string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath, "--user", user}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func addedID(t *testing.T, out string) string {
	t.Helper()
	id, ok := strings.CutPrefix(strings.TrimSpace(out), "Added ")
	require.True(t, ok, out)
	return id
}

func TestAddListDone(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	out, err := run(t, configPath, "alice", "add", "Buy", "milk", "--priority", "high", "--due", "2026-05-04 15:00")
	require.NoError(t, err)
	id := addedID(t, out)

	_, err = run(t, configPath, "alice", "add", "Call mum")
	require.NoError(t, err)

	out, err = run(t, configPath, "alice", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], id)
	require.Contains(t, lines[1], "high")
	require.Contains(t, lines[1], "Buy milk")
	require.Contains(t, lines[2], "Call mum")

	out, err = run(t, configPath, "bob", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No pending tasks.")

	_, err = run(t, configPath, "alice", "done", id)
	require.NoError(t, err)
	out, err = run(t, configPath, "alice", "list")
	require.NoError(t, err)
	require.NotContains(t, out, "Buy milk")

	_, err = run(t, configPath, "alice", "done", "missing")
	require.ErrorIs(t, err, task.ErrNotFound)
}

func TestDottedUserName(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	_, err := run(t, configPath, "jane.doe", "add", "Buy milk")
	require.NoError(t, err)

	out, err := run(t, configPath, "jane.doe", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Buy milk")

	out, err = run(t, configPath, "jane", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No pending tasks.")
}

func TestAddValidation(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	_, err := run(t, configPath, "alice", "add", "x", "--priority", "urgent")
	require.ErrorIs(t, err, task.ErrValidation)

	_, err = run(t, configPath, "alice", "add", "x", "--due", "soon")
	require.ErrorIs(t, err, task.ErrValidation)

	_, err = run(t, configPath, "alice", "add", "  ")
	require.ErrorIs(t, err, task.ErrValidation)
}

func TestCalendarAndDelete(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	out, err := run(t, configPath, "alice", "add", "dentist", "--due", "2026-05-04 15:00")
	require.NoError(t, err)
	id := addedID(t, out)

	out, err = run(t, configPath, "alice", "calendar", "--month", "2026-05")
	require.NoError(t, err)
	require.Contains(t, out, "May 2026")
	require.Contains(t, out, " 4*")
	require.Contains(t, out, "Mon May 4")
	require.Contains(t, out, "3:00 PM dentist")

	_, err = run(t, configPath, "alice", "rm", id)
	require.NoError(t, err)
	_, err = run(t, configPath, "alice", "rm", id)
	require.NoError(t, err)

	out, err = run(t, configPath, "alice", "calendar", "--month", "2026-05")
	require.NoError(t, err)
	require.NotContains(t, out, "dentist")

	_, err = run(t, configPath, "alice", "calendar", "--month", "May")
	require.Error(t, err)
}
