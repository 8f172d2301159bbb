package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/miraveja/miraveja/constants"
	"github.com/miraveja/miraveja/util"
)

type CivitaiConfig struct {
	APIURL         string `toml:"api_url"`
	APIKey         string `toml:"api_key"`
	HashAlgorithm  string `toml:"hash_algorithm"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SortBy         string `toml:"sort_by"`
	Period         string `toml:"period"`
	NsfwLevel      string `toml:"nsfw_level"`
}

type ServerConfig struct {
	Listen     string `toml:"listen"`
	DB         string `toml:"db"`
	StorageDir string `toml:"storage_dir"`
}

type Config struct {
	Civitai CivitaiConfig `toml:"civitai"`
	Server  ServerConfig  `toml:"server"`
}

func (c *CivitaiConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load builds the effective config: defaults, overlaid by the TOML config
// file (path argument, or the env-named file if path is empty; a missing file
// is fine), overlaid by env variables.
func Load(path string) (*Config, error) {
	config := &Config{
		Civitai: CivitaiConfig{
			APIURL:         constants.DEFAULT_CIVITAI_API_URL,
			HashAlgorithm:  constants.DEFAULT_HASH_ALGORITHM,
			TimeoutSeconds: constants.DEFAULT_REGISTRY_TIMEOUT_SECONDS,
		},
		Server: ServerConfig{
			Listen:     constants.DEFAULT_LISTEN,
			DB:         constants.DEFAULT_DB,
			StorageDir: constants.DEFAULT_STORAGE_DIR,
		},
	}

	explicit := path != ""
	if path == "" {
		path = os.Getenv(constants.ENV_CONFIG)
	}
	if path != "" {
		contents, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
			}
		} else if err := toml.Unmarshal(contents, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	if v := os.Getenv(constants.ENV_CIVITAI_API_URL); v != "" {
		config.Civitai.APIURL = v
	}
	if v := os.Getenv(constants.ENV_CIVITAI_API_KEY); v != "" {
		config.Civitai.APIKey = v
	}
	if v := os.Getenv(constants.ENV_HASH_ALGORITHM); v != "" {
		config.Civitai.HashAlgorithm = v
	}
	config.Civitai.TimeoutSeconds = util.ParseInt(
		os.Getenv(constants.ENV_REGISTRY_TIMEOUT), config.Civitai.TimeoutSeconds)
	if v := os.Getenv(constants.ENV_DB); v != "" {
		config.Server.DB = v
	}
	if v := os.Getenv(constants.ENV_STORAGE_DIR); v != "" {
		config.Server.StorageDir = v
	}
	return config, nil
}
