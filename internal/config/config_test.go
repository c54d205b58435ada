package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, BackendSQLite, cfg.Backend)
	require.Equal(t, filepath.Join(dir, "sub", DefaultDBName), cfg.DBPath)
	require.Equal(t, filepath.Join(dir, "sub", DefaultLogName), cfg.Log.Path)
	require.Equal(t, "a", cfg.Keys.Add)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadOrCreateMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
user = "alice"
week_start = "monday"
db_path = "/var/lib/taskdeck/tasks.db"

[keys]
add = "n"
`), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.User)
	require.Equal(t, "/var/lib/taskdeck/tasks.db", cfg.DBPath)
	require.Equal(t, "n", cfg.Keys.Add)
	require.Equal(t, "q", cfg.Keys.Quit)
	wd, err := cfg.FirstWeekday()
	require.NoError(t, err)
	require.Equal(t, time.Monday, wd)
}

func TestLoadOrCreateRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"backend":    `backend = "redis"`,
		"mongo":      `backend = "mongo"`,
		"week start": `week_start = "friday"`,
		"syntax":     `user = `,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadOrCreate(path)
			require.Error(t, err)
		})
	}
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	t.Setenv("TASKDECK_CONFIG", "/tmp/x.toml")
	require.Equal(t, "/tmp/x.toml", ResolveConfigPath())
}
