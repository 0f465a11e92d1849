package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIsolatedLoader() *Loader {
	// Tests must not pick up a developer's ~/.config/framescan.yaml.
	return &Loader{v: viper.New()}
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "framescan.yaml")
	content := `
log_level: debug
detection:
  min_frame_dim: 50
  anchor:
    primary_text: "中国核电工程有限公司"
    secondary_text: "CNPE"
    match_policy: any_hit_accept
sheetset:
  gap_factor: 0.75
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := newIsolatedLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50.0, cfg.Detection.MinFrameDim)
	assert.Equal(t, MatchAnyHit, cfg.Detection.Anchor.MatchPolicy)
	assert.Equal(t, 0.75, cfg.SheetSet.GapFactor)

	// Untouched sections keep their defaults, including the built-in catalog.
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Detection.Papers)
	assert.NotEmpty(t, cfg.Detection.Profiles)
}

func TestLoadWithFileCustomCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "framescan.yaml")
	content := `
detection:
  papers:
    B1:
      width: 1000
      height: 707
      profile: CUSTOM
  profiles:
    CUSTOM:
      tolerance: 0.5
      fields:
        anchor: [10, 180, 46, 56]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := newIsolatedLoader().LoadWithFile(path)
	require.NoError(t, err)

	// A file-defined catalog fully replaces the built-in one.
	require.Len(t, cfg.Detection.Papers, 1)
	assert.Equal(t, 1000.0, cfg.Detection.Papers["B1"].Width)
	require.NotNil(t, cfg.Detection.Profile("CUSTOM"))
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := newIsolatedLoader().LoadWithFile("/nonexistent/framescan.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithFileInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "framescan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: shout\n"), 0o600))

	_, err := newIsolatedLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
