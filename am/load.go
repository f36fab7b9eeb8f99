package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/wbwatch/errors"
)

// Load builds the configuration for one process.
//
// Precedence (lowest to highest): defaults < user file (~/.wbwatch/wbwatch.toml)
// < project file (./wbwatch.toml) < environment. An explicit configPath
// replaces the file search and must exist.
func Load(configPath string) (*Config, error) {
	v := newViper()

	files, err := configFiles(configPath)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := mergeConfigFile(v, f); err != nil {
			return nil, err
		}
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	if cfg.Keywords.File != "" {
		path := cfg.Keywords.File
		if !filepath.IsAbs(path) && len(files) > 0 {
			path = filepath.Join(filepath.Dir(files[len(files)-1]), path)
		}
		kw, err := LoadKeywordFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Keywords.Terms = kw.Keywords
		if len(kw.ContractorTerms) > 0 {
			cfg.Keywords.ContractorTerms = kw.ContractorTerms
		}
	}

	return cfg, nil
}

// LoadWithViper unmarshals configuration from a prepared Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// Sources returns the config files Load would merge for configPath, in precedence order.
func Sources(configPath string) ([]string, error) {
	return configFiles(configPath)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("WBWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)
	SetDefaults(v)
	return v
}

func configFiles(configPath string) ([]string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, errors.Wrapf(err, "config file %s", configPath)
		}
		return []string{configPath}, nil
	}

	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".wbwatch", DefaultConfigName))
	}
	candidates = append(candidates, DefaultConfigName)

	var found []string
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			found = append(found, c)
		}
	}
	return found, nil
}

// mergeConfigFile layers one TOML file over the instance. MergeConfigMap keeps
// environment variables above file values.
func mergeConfigFile(v *viper.Viper, path string) error {
	fileViper := viper.New()
	fileViper.SetConfigFile(path)
	fileViper.SetConfigType("toml")

	if err := fileViper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
		return errors.Wrapf(err, "failed to merge config file %s", path)
	}
	return nil
}
