package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miraveja/miraveja/constants"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		constants.ENV_CONFIG,
		constants.ENV_CIVITAI_API_URL,
		constants.ENV_CIVITAI_API_KEY,
		constants.ENV_HASH_ALGORITHM,
		constants.ENV_REGISTRY_TIMEOUT,
		constants.ENV_DB,
		constants.ENV_STORAGE_DIR,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, constants.DEFAULT_CIVITAI_API_URL, conf.Civitai.APIURL)
	assert.Equal(t, constants.DEFAULT_HASH_ALGORITHM, conf.Civitai.HashAlgorithm)
	assert.Equal(t, constants.DEFAULT_REGISTRY_TIMEOUT_SECONDS*time.Second, conf.Civitai.Timeout())
	assert.Equal(t, constants.DEFAULT_LISTEN, conf.Server.Listen)
	assert.Equal(t, constants.DEFAULT_DB, conf.Server.DB)
	assert.Equal(t, constants.DEFAULT_STORAGE_DIR, conf.Server.StorageDir)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[civitai]
api_key = "from-file"
timeout_seconds = 10

[server]
listen = ":9090"
`), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", conf.Civitai.APIKey)
	assert.Equal(t, 10*time.Second, conf.Civitai.Timeout())
	assert.Equal(t, ":9090", conf.Server.Listen)
	// Values absent from the file keep their defaults.
	assert.Equal(t, constants.DEFAULT_CIVITAI_API_URL, conf.Civitai.APIURL)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadEnvNamedMissingFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv(constants.ENV_CONFIG, filepath.Join(t.TempDir(), "nope.toml"))
	_, err := Load("")
	require.NoError(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[civitai\nbroken"), 0644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[civitai]
api_key = "from-file"
timeout_seconds = 10
`), 0644))
	t.Setenv(constants.ENV_CIVITAI_API_KEY, "from-env")
	t.Setenv(constants.ENV_REGISTRY_TIMEOUT, "30")
	t.Setenv(constants.ENV_DB, "env.db")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", conf.Civitai.APIKey)
	assert.Equal(t, 30*time.Second, conf.Civitai.Timeout())
	assert.Equal(t, "env.db", conf.Server.DB)
}
