package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "", "")
	flags.String("database", "", "")
	flags.String("schema", "", "")
	flags.Bool("verbose", false, "")
	flags.String("output", "", "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", testFlags())
	require.NoError(t, err)

	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semql.yaml")
	content := "dialect: sqlite\noutput: json\nsearch_inside_words: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, testFlags())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Dialect)
	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.SearchInsideWords)
	assert.Equal(t, path, FileUsed())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: sqlite\n"), 0o600))

	t.Setenv("SEMQL_DIALECT", "ansi")

	cfg, err := Load(path, testFlags())
	require.NoError(t, err)
	assert.Equal(t, "ansi", cfg.Dialect)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SEMQL_DIALECT", "sqlite")

	flags := testFlags()
	require.NoError(t, flags.Set("dialect", "ansi"))
	require.NoError(t, flags.Set("verbose", "true"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "ansi", cfg.Dialect)
	assert.True(t, cfg.Verbose)
}

func TestLoadUnsetFlagsDoNotOverride(t *testing.T) {
	t.Setenv("SEMQL_OUTPUT", "plain")

	cfg, err := Load("", testFlags())
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.Output)
}

func TestLoadBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0o600))

	_, err := Load(path, testFlags())
	assert.Error(t, err)
}
