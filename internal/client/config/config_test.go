package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:3000", cfg.ServerEndpointAddr)
	assert.Equal(t, "exports", cfg.ExportDir)
}

func TestParseFlags_Overrides(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"cli", "-a", "http://vault.local:8080", "-x", "dumps"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "http://vault.local:8080", cfg.ServerEndpointAddr)
	assert.Equal(t, "dumps", cfg.ExportDir)
}

func TestParseJson_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")

	data, err := json.Marshal(JsonConfig{ServerEndpointAddr: "http://json.local:3000"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"cli", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://json.local:3000", cfg.ServerEndpointAddr)
	// Fields absent from the JSON keep their defaults.
	assert.Equal(t, "exports", cfg.ExportDir)
}
