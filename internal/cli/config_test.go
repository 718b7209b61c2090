package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfigFile_ExplicitPath(t *testing.T) {
	// Create temp file
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "custom.yaml")
	err := os.WriteFile(tmpFile, []byte("database:\n  path: test.db"), 0o644)
	require.NoError(t, err)

	path, err := findConfigFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, tmpFile, path)
}

func TestFindConfigFile_ExplicitPathNotFound(t *testing.T) {
	_, err := findConfigFile("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestFindConfigFile_AutoDiscovery(t *testing.T) {
	// Create directory structure with .git and garter.yaml
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(root, "garter.yaml")
	err = os.WriteFile(configPath, []byte("database:\n  path: test.db"), 0o644)
	require.NoError(t, err)

	// Create nested directory
	nested := filepath.Join(root, "deep", "nested")
	err = os.MkdirAll(nested, 0o755)
	require.NoError(t, err)

	// Change to nested directory
	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(nested)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(configPath)
	actualPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, expectedPath, actualPath)
}

func TestFindConfigFile_PrefersGarterYamlOverYml(t *testing.T) {
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	// Create both files
	yamlPath := filepath.Join(root, "garter.yaml")
	ymlPath := filepath.Join(root, "garter.yml")
	err = os.WriteFile(yamlPath, []byte("database:\n  path: yaml.db"), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(ymlPath, []byte("database:\n  path: yml.db"), 0o644)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(yamlPath)
	actualPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, expectedPath, actualPath) // Should prefer .yaml
}

func TestFindConfigFile_StopsAtGitRoot(t *testing.T) {
	// Config above .git should not be found
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, "garter.yaml"), []byte("database:\n  path: above.db"), 0o644)
	require.NoError(t, err)

	project := filepath.Join(root, "project")
	err = os.MkdirAll(project, 0o755)
	require.NoError(t, err)
	err = os.Mkdir(filepath.Join(project, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(project)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)
	assert.Empty(t, path) // Should not find config above .git
}

func TestFindConfigFile_NoConfigReturnsEmpty(t *testing.T) {
	// Create directory with .git but no config
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Create directory with .git but no config
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	cfg, configPath, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, configPath)

	// Check defaults
	assert.Empty(t, cfg.Database.Path)
	assert.False(t, cfg.Database.Verbose)
	assert.Equal(t, "table", cfg.Query.Format)
	assert.Equal(t, int64(0), cfg.Query.Limit)
}

func TestLoadConfig_FromFile(t *testing.T) {
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(root, "garter.yaml")
	err = os.WriteFile(configPath, []byte(`
database:
  path: app.db
  verbose: true
query:
  format: csv
`), 0o644)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	cfg, foundPath, err := LoadConfig("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(configPath)
	actualPath, _ := filepath.EvalSymlinks(foundPath)
	assert.Equal(t, expectedPath, actualPath)

	assert.Equal(t, "app.db", cfg.Database.Path)
	assert.True(t, cfg.Database.Verbose)
	assert.Equal(t, "csv", cfg.Query.Format)

	// Check that defaults are still applied for unset values
	assert.Equal(t, int64(0), cfg.Query.Limit)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(root, "garter.yaml")
	err = os.WriteFile(configPath, []byte("database:\n  path: file.db"), 0o644)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	// Set env var
	t.Setenv("GARTER_DATABASE_PATH", "env.db")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)

	// Env should override file
	assert.Equal(t, "env.db", cfg.Database.Path)
}

func TestLoadConfig_NestedEnvVars(t *testing.T) {
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	// Set nested env vars
	t.Setenv("GARTER_DATABASE_PATH", "envpath.db")
	t.Setenv("GARTER_QUERY_FORMAT", "json")
	t.Setenv("GARTER_QUERY_LIMIT", "25")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "envpath.db", cfg.Database.Path)
	assert.Equal(t, "json", cfg.Query.Format)
	assert.Equal(t, int64(25), cfg.Query.Limit)
}

func TestDatabasePath_FlagTakesPrecedence(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "config.db"}}

	path, err := cfg.DatabasePath("flag.db")
	require.NoError(t, err)
	assert.Equal(t, "flag.db", path)
}

func TestDatabasePath_FallsBackToConfig(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "config.db"}}

	path, err := cfg.DatabasePath("")
	require.NoError(t, err)
	assert.Equal(t, "config.db", path)
}

func TestDatabasePath_Missing(t *testing.T) {
	cfg := &Config{}

	_, err := cfg.DatabasePath("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path required")
}
