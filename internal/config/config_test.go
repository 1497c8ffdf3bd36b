package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "placemap.sqlite", cfg.DBURL)
	assert.Equal(t, 8, cfg.DBConnectionPoolSize)
	assert.Equal(t, "", cfg.IndexDir)
	assert.False(t, cfg.EnableCORS)
	assert.Equal(t, ":6767", cfg.ListenAddr)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_URL", "/var/lib/placemap/db.sqlite")
	t.Setenv("DB_CONNECTION_POOL_SIZE", "32")
	t.Setenv("ENABLE_CORS", "true")
	t.Setenv("INDEX_DIR", "/var/lib/placemap/index")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/placemap/db.sqlite", cfg.DBURL)
	assert.Equal(t, 32, cfg.DBConnectionPoolSize)
	assert.True(t, cfg.EnableCORS)
	assert.Equal(t, "/var/lib/placemap/index", cfg.IndexDir)
}

func TestLoad_InvalidPoolSize(t *testing.T) {
	t.Setenv("DB_CONNECTION_POOL_SIZE", "zero")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_CONNECTION_POOL_SIZE", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestAddFlags_CommandLineWins(t *testing.T) {
	t.Setenv("DB_URL", "from-env.sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	cmd := &cobra.Command{Use: "placemap", RunE: func(*cobra.Command, []string) error { return nil }}
	cfg.AddFlags(cmd)

	cmd.SetArgs([]string{"--db-url", "from-flag.sqlite"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "from-flag.sqlite", cfg.DBURL)
	assert.Equal(t, 8, cfg.DBConnectionPoolSize, "untouched flags keep environment defaults")
}
