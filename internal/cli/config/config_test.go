package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "querybench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultScriptsDir, cfg.ScriptsDir)
	assert.Equal(t, DefaultArtifactsFile, cfg.ArtifactsPath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, "duckdb", cfg.Target.Type)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()

	path := writeConfigFile(t, `
scripts_dir: queries
artifacts_path: /tmp/bench.db
target:
  type: duckdb
  path: warehouse.duckdb
ui:
  port: 9000
  watch: false
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "queries", cfg.ScriptsDir)
	assert.Equal(t, "/tmp/bench.db", cfg.ArtifactsPath)
	assert.Equal(t, "warehouse.duckdb", cfg.Target.Path)
	assert.Equal(t, 9000, cfg.GetUIConfig().Port)
	assert.False(t, cfg.GetUIConfig().Watch)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()

	path := writeConfigFile(t, "scripts_dir: from_file\n")
	t.Setenv("QUERYBENCH_SCRIPTS_DIR", "from_env")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.ScriptsDir)
}

func TestLoadConfigNestedEnvKeys(t *testing.T) {
	ResetConfig()

	t.Setenv("QUERYBENCH_TARGET__TYPE", "duckdb")
	t.Setenv("QUERYBENCH_TARGET__PATH", "env.duckdb")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, "env.duckdb", cfg.Target.Path)
}

func TestLoadConfigFlagsWinOverEnv(t *testing.T) {
	ResetConfig()

	t.Setenv("QUERYBENCH_SCRIPTS_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("scripts-dir", "", "")
	flags.String("artifacts", "", "")
	require.NoError(t, flags.Parse([]string{"--scripts-dir", "from_flag", "--artifacts", "flag.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from_flag", cfg.ScriptsDir)
	assert.Equal(t, "flag.db", cfg.ArtifactsPath)
}

func TestLoadConfigDatabaseFlagSetsTargetPath(t *testing.T) {
	ResetConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "", "")
	require.NoError(t, flags.Parse([]string{"--database", "local.duckdb"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "local.duckdb", cfg.Target.Path)
}

func TestLoadConfigUnsetFlagsAreIgnored(t *testing.T) {
	ResetConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("scripts-dir", "unused-default", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, DefaultScriptsDir, cfg.ScriptsDir)
}

func TestLoadConfigRejectsUnknownTarget(t *testing.T) {
	ResetConfig()

	path := writeConfigFile(t, "target:\n  type: oracle\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target type")
}

func TestLoadConfigPostgresRequiresHost(t *testing.T) {
	ResetConfig()

	path := writeConfigFile(t, "target:\n  type: postgres\n  database: bench\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a host")
}

func TestExpandTargetEnvVars(t *testing.T) {
	t.Setenv("BENCH_PASSWORD", "s3cret")

	target := &TargetConfig{Password: "${BENCH_PASSWORD}", User: "${MISSING_VAR}"}
	expandTargetEnvVars(target)

	assert.Equal(t, "s3cret", target.Password)
	assert.Equal(t, "${MISSING_VAR}", target.User)
}
