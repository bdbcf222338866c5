package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("SLOTDRAW_TEST_DB_HOST", "db.internal")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
log_level = "debug"

[database]
driver = "mysql"
host = "${SLOTDRAW_TEST_DB_HOST}"
port = "3306"

[reservation]
default_ttl = "5m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 5*time.Minute, cfg.Reservation.DefaultTTL.Duration)

	// Fields missing from the file keep their defaults.
	require.Equal(t, time.Hour, cfg.Reservation.MaxTTL.Duration)
	require.Equal(t, 1000, cfg.Reservation.MaxPageSize)
	require.Contains(t, cfg.Database.ConnectionString(), "@tcp(db.internal:3306)/")
}

func TestLoad_Default(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "slotdraw.db", cfg.Database.ConnectionString())

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	require.Equal(t, 90*time.Second, d.Duration)
	require.Error(t, d.UnmarshalText([]byte("soon")))
}
