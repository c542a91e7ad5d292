package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: VCS_STORAGE_TYPE=s3.
const EnvPrefix = "VCS"

// Load initialises viper. cfgFile is an optional explicit config file; when
// empty, config.yaml is searched in .vcs/ and then $HOME/.vcs/. A missing
// file is fine, a malformed one is not. It returns the file actually used,
// or "".
func Load(cfgFile string) (string, error) {
	// 1. Defaults
	SetDefaults()

	// 2. Search paths
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".vcs")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".vcs"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 3. Environment (VCS_DATABASE_DRIVER, ...)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. Read
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("fatal error config file: %w", err)
	}
	return viper.ConfigFileUsed(), nil
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("repo.dir", ".vcs")

	// storage
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.compression", "none")
	viper.SetDefault("storage.compression_level", 3)
	viper.SetDefault("storage.lru_size", 0)
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.prefix", "objects/")

	// redis existence cache, off unless a URL is set
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.ttl", "24h")

	// metadata mirror, off unless a driver is set
	viper.SetDefault("database.driver", "")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "vcs")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("checkout.parallelism", 1)
	viper.SetDefault("log.level", "warn")
}
