package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/teranos/wbwatch/errors"
)

// Defaults returns the configuration produced by defaults alone, ignoring files and environment.
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always decode; a failure here is a programming error
		panic(err)
	}
	return cfg
}

// WriteDefault writes a starter config file to path, rotating an existing
// file into .back1..3 first.
func WriteDefault(path string) error {
	data, err := toml.Marshal(Defaults())
	if err != nil {
		return errors.Wrap(err, "failed to marshal default config")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := createBackup(path); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// createBackup rotates backups (.back1, .back2, .back3) before a config file is replaced
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	back1, back2, back3 := configPath+".back1", configPath+".back2", configPath+".back3"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", back3)
	}
	for _, step := range [][2]string{{back2, back3}, {back1, back2}} {
		if _, err := os.Stat(step[0]); err == nil {
			if err := os.Rename(step[0], step[1]); err != nil {
				return errors.Wrapf(err, "failed to rotate %s", step[0])
			}
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, 0o600); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	c.Webhook.URL = redactWebhook(c.Webhook.URL)
	c.Telegram.Token = mask(c.Telegram.Token)
	c.State.S3.AccessKeyID = mask(c.State.S3.AccessKeyID)
	c.State.S3.SecretAccessKey = mask(c.State.S3.SecretAccessKey)
	c.Keywords.Terms = append([]string(nil), c.Keywords.Terms...)
	c.Keywords.ContractorTerms = append([]string(nil), c.Keywords.ContractorTerms...)
	return c
}

// ToMap converts the config to the nested key layout of the TOML file, for
// re-encoding as JSON or YAML.
func (c Config) ToMap() (map[string]interface{}, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	var out map[string]interface{}
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "failed to re-read config")
	}
	return out, nil
}

// redactWebhook keeps the webhook id but hides its token: .../webhooks/<id>/****
func redactWebhook(url string) string {
	if url == "" || strings.Contains(url, "REPLACE_ME") {
		return url
	}
	i := strings.LastIndex(url, "/")
	if i < 0 || i == len(url)-1 {
		return mask(url)
	}
	return url[:i+1] + "****"
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
