package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wbwatch/errors"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper: no files, no environment
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultWebhookURL, cfg.Webhook.URL)
	assert.Equal(t, "World Bank GIS Monitor", cfg.Webhook.Username)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout())
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Backoff())
	assert.Equal(t, "WB-GIS-Monitor-Agent/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, "NG", cfg.Region.CountryCode)

	assert.True(t, cfg.Streams.Projects.Enabled)
	assert.True(t, cfg.Streams.ProcurementPlans.Enabled)
	assert.False(t, cfg.Streams.Tenders.Enabled)
	assert.False(t, cfg.Streams.Awards.Enabled)
	assert.Equal(t, 50, cfg.Streams.Projects.RowsPerPage)
	assert.Equal(t, "processed_docs.json", cfg.Streams.ProcurementPlans.StateFile)

	assert.Contains(t, cfg.Keywords.Terms, "GIS")
	assert.Contains(t, cfg.Keywords.ContractorTerms, "engineering firm")
	assert.Equal(t, BackendJSON, cfg.State.Backend)
	assert.Equal(t, "monday", cfg.Heartbeat.Weekday)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wbwatch.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[region]
country_code = "KE"

[streams.tenders]
enabled = true

[http]
max_retries = 5
`), 0o600))

	t.Setenv("WBWATCH_HTTP_MAX_RETRIES", "2")
	t.Setenv("WB_DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "KE", cfg.Region.CountryCode)
	assert.True(t, cfg.Streams.Tenders.Enabled)
	assert.Equal(t, 2, cfg.HTTP.MaxRetries, "environment overrides file")
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.Webhook.URL)
	assert.Equal(t, "Nigeria", cfg.Region.CountryName, "defaults survive partial files")
}

func TestLoad_PreferredWebhookEnv(t *testing.T) {
	t.Setenv("WBWATCH_WEBHOOK_URL", "https://discord.com/api/webhooks/2/new")
	t.Setenv("WB_DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/old")

	path := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/2/new", cfg.Webhook.URL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoad_KeywordFileRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kw.yaml"), []byte(`
keywords:
  - cadastre
  - lidar
contractor_terms:
  - surveying
`), 0o600))
	path := filepath.Join(dir, "wbwatch.toml")
	require.NoError(t, os.WriteFile(path, []byte("[keywords]\nfile = \"kw.yaml\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cadastre", "lidar"}, cfg.Keywords.Terms)
	assert.Equal(t, []string{"surveying"}, cfg.Keywords.ContractorTerms)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, true},
		{"zero retries", func(c *Config) { c.HTTP.MaxRetries = 0 }, true},
		{"zero backoff is valid", func(c *Config) { c.HTTP.BackoffSeconds = 0 }, false},
		{"negative backoff", func(c *Config) { c.HTTP.BackoffSeconds = -1 }, true},
		{"empty region", func(c *Config) { c.Region.CountryCode = " " }, true},
		{"empty keywords", func(c *Config) { c.Keywords.Terms = nil }, true},
		{"enabled stream without url", func(c *Config) { c.Streams.Projects.URL = "" }, true},
		{"disabled stream without url", func(c *Config) { c.Streams.Awards.URL = "" }, false},
		{"zero page size", func(c *Config) { c.Streams.ProcurementPlans.RowsPerPage = 0 }, true},
		{"unknown backend", func(c *Config) { c.State.Backend = "redis" }, true},
		{"sqlite without path", func(c *Config) { c.State.Backend = BackendSQLite; c.State.DatabasePath = "" }, true},
		{"badger is valid", func(c *Config) { c.State.Backend = BackendBadger }, false},
		{"s3 without bucket", func(c *Config) { c.State.S3.Enabled = true }, true},
		{"s3 with bucket", func(c *Config) { c.State.S3.Enabled = true; c.State.S3.Bucket = "b" }, false},
		{"s3 on sqlite", func(c *Config) {
			c.State.S3.Enabled = true
			c.State.S3.Bucket = "b"
			c.State.Backend = BackendSQLite
		}, true},
		{"bad weekday", func(c *Config) { c.Heartbeat.Weekday = "someday" }, true},
		{"short weekday", func(c *Config) { c.Heartbeat.Weekday = "Fri" }, false},
		{"bad weekday ignored when disabled", func(c *Config) {
			c.Heartbeat.Enabled = false
			c.Heartbeat.Weekday = "someday"
		}, false},
		{"bad timezone", func(c *Config) { c.Heartbeat.Timezone = "Mars/Olympus" }, true},
		{"unknown channel", func(c *Config) { c.Notify.Channel = "email" }, true},
		{"telegram without token", func(c *Config) { c.Notify.Channel = ChannelTelegram }, true},
		{"telegram configured", func(c *Config) {
			c.Notify.Channel = ChannelTelegram
			c.Telegram.Token = "t"
			c.Telegram.ChatID = 42
		}, false},
		{"placeholder webhook is valid", func(c *Config) { c.Webhook.URL = DefaultWebhookURL }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestHeartbeatDay(t *testing.T) {
	for name, want := range map[string]time.Weekday{
		"monday": time.Monday, "Monday": time.Monday, "mon": time.Monday, " sunday ": time.Sunday,
	} {
		got, err := HeartbeatConfig{Weekday: name}.Day()
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestStatePath(t *testing.T) {
	s := StateConfig{Dir: "/var/lib/wbwatch"}
	assert.Equal(t, "/var/lib/wbwatch/processed_projects.json", s.Path("processed_projects.json"))
	assert.Equal(t, "/tmp/x.json", s.Path("/tmp/x.json"))
}

func TestStreamsByName(t *testing.T) {
	cfg := Defaults()
	for _, name := range StreamNames {
		s, ok := cfg.Streams.ByName(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, s.URL, name)
	}
	_, ok := cfg.Streams.ByName("grants")
	assert.False(t, ok)
}
