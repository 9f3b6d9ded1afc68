package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.False(t, cfg.ApplyMinFilter)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, ":8080", cfg.Serve.Addr)
	require.Equal(t, 5*time.Second, cfg.Serve.Timeout)
	require.Empty(t, cfg.TableName)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TABLE_NAME", " MovieAwards ")
	t.Setenv("REGION", "eu-west-1")
	t.Setenv("APPLY_MIN_FILTER", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVE_TIMEOUT", "2s")
	t.Setenv("PARAM_PREFIX", "/movie-awards")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, "MovieAwards", cfg.TableName)
	require.Equal(t, "eu-west-1", cfg.Region)
	require.True(t, cfg.ApplyMinFilter)
	require.Equal(t, "/movie-awards", cfg.ParamPrefix)
	require.Equal(t, 2*time.Second, cfg.Serve.Timeout)
	require.Equal(t, ":8080", cfg.Serve.Addr)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table_name: FromFile\nlog_level: warn\nserve:\n  addr: 127.0.0.1:9000\n"), 0o600))
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "FromFile", cfg.TableName)
	require.Equal(t, "error", cfg.LogLevel)
	require.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
	require.Equal(t, 5*time.Second, cfg.Serve.Timeout)
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
}

func TestLoad_DirectoryRejected(t *testing.T) {
	_, err := Load(viper.New(), t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "is a directory")
}

func TestValidate(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	require.ErrorContains(t, cfg.Validate(), "TABLE_NAME")

	cfg.LocalDBPath = "/tmp/awards"
	require.NoError(t, cfg.Validate())

	cfg = &Config{TableName: "MovieAwards", LogLevel: "loud"}
	require.ErrorContains(t, cfg.Validate(), "log_level")
}
