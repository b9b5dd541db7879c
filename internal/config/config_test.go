package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.Models.Media)
	assert.NotEmpty(t, cfg.Models.Video)
	assert.NotEmpty(t, cfg.Prompts.Media)
	assert.NotEmpty(t, cfg.Prompts.Assistant)
	assert.Contains(t, cfg.Prompts.Certificate, "%s")
	assert.Equal(t, "gemini", cfg.LLM.Provider)
}

// A partial config file overrides only the keys it names.
func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[models]
media = "custom-media-model"

[llm]
provider = "openai"
model = "gpt-4o"
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "custom-media-model", cfg.Models.Media)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().Models.Trace, cfg.Models.Trace)
	assert.Equal(t, Default().Prompts.Media, cfg.Prompts.Media)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("models = ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
