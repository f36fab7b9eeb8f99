// Package am holds the monitor's configuration.
//
// A Config is built once per process by Load and handed by pointer to every
// component; nothing in the tree reads configuration from package state.
package am

import (
	"path/filepath"
	"time"
)

// Stream names. They double as state keys, so they must never change.
const (
	StreamProjects         = "projects"
	StreamProcurementPlans = "procurement_plans"
	StreamTenders          = "tenders"
	StreamAwards           = "awards"
)

// StreamNames lists every known stream in processing order.
var StreamNames = []string{StreamProjects, StreamProcurementPlans, StreamTenders, StreamAwards}

// State backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Notification channels
const (
	ChannelDiscord  = "discord"
	ChannelTelegram = "telegram"
)

// Config represents the full wbwatch configuration
type Config struct {
	Webhook   WebhookConfig   `mapstructure:"webhook" toml:"webhook"`
	HTTP      HTTPConfig      `mapstructure:"http" toml:"http"`
	Region    RegionConfig    `mapstructure:"region" toml:"region"`
	Keywords  KeywordsConfig  `mapstructure:"keywords" toml:"keywords"`
	Streams   StreamsConfig   `mapstructure:"streams" toml:"streams"`
	State     StateConfig     `mapstructure:"state" toml:"state"`
	Heartbeat HeartbeatConfig `mapstructure:"heartbeat" toml:"heartbeat"`
	Notify    NotifyConfig    `mapstructure:"notify" toml:"notify"`
	Telegram  TelegramConfig  `mapstructure:"telegram" toml:"telegram"`
	Log       LogConfig       `mapstructure:"log" toml:"log"`
}

// WebhookConfig configures the Discord-compatible webhook destination
type WebhookConfig struct {
	URL      string `mapstructure:"url" toml:"url"`           // empty or containing REPLACE_ME = not configured
	Username string `mapstructure:"username" toml:"username"` // sender name shown on every alert
}

// HTTPConfig configures every outbound call
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" toml:"max_retries"`         // total attempts, including the first
	BackoffSeconds int    `mapstructure:"backoff_seconds" toml:"backoff_seconds"` // sleep is backoff * attempt
	UserAgent      string `mapstructure:"user_agent" toml:"user_agent"`
	BlockPrivateIP bool   `mapstructure:"block_private_ip" toml:"block_private_ip"`
}

// Timeout returns the per-request timeout
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// Backoff returns the base backoff unit
func (h HTTPConfig) Backoff() time.Duration {
	return time.Duration(h.BackoffSeconds) * time.Second
}

// RegionConfig selects the borrower country being monitored
type RegionConfig struct {
	CountryCode string `mapstructure:"country_code" toml:"country_code"` // ISO alpha-2, e.g. NG
	CountryName string `mapstructure:"country_name" toml:"country_name"` // as the documents service spells it
}

// KeywordsConfig configures relevance matching
type KeywordsConfig struct {
	Terms           []string `mapstructure:"terms" toml:"terms"`
	File            string   `mapstructure:"file" toml:"file"` // optional YAML file replacing terms
	ContractorTerms []string `mapstructure:"contractor_terms" toml:"contractor_terms"`
}

// StreamConfig configures one upstream stream. Fields a stream does not use are ignored.
type StreamConfig struct {
	Enabled      bool   `mapstructure:"enabled" toml:"enabled"`
	URL          string `mapstructure:"url" toml:"url"`
	RowsPerPage  int    `mapstructure:"rows_per_page" toml:"rows_per_page"`
	MaxPages     int    `mapstructure:"max_pages" toml:"max_pages"` // 0 = follow total
	Status       string `mapstructure:"status" toml:"status"`
	DocumentType string `mapstructure:"document_type" toml:"document_type"`
	AssetID      string `mapstructure:"asset_id" toml:"asset_id"`
	Query        string `mapstructure:"query" toml:"query"`
	StateFile    string `mapstructure:"state_file" toml:"state_file"`
}

// StreamsConfig holds the per-stream settings
type StreamsConfig struct {
	Projects         StreamConfig `mapstructure:"projects" toml:"projects"`
	ProcurementPlans StreamConfig `mapstructure:"procurement_plans" toml:"procurement_plans"`
	Tenders          StreamConfig `mapstructure:"tenders" toml:"tenders"`
	Awards           StreamConfig `mapstructure:"awards" toml:"awards"`
}

// ByName returns the settings for a stream name
func (s StreamsConfig) ByName(name string) (StreamConfig, bool) {
	switch name {
	case StreamProjects:
		return s.Projects, true
	case StreamProcurementPlans:
		return s.ProcurementPlans, true
	case StreamTenders:
		return s.Tenders, true
	case StreamAwards:
		return s.Awards, true
	}
	return StreamConfig{}, false
}

// StateConfig configures where change-detection state lives
type StateConfig struct {
	Backend      string   `mapstructure:"backend" toml:"backend"` // json, sqlite, badger
	Dir          string   `mapstructure:"dir" toml:"dir"`
	DatabasePath string   `mapstructure:"database_path" toml:"database_path"`
	MonitorFile  string   `mapstructure:"monitor_file" toml:"monitor_file"`
	Lock         bool     `mapstructure:"lock" toml:"lock"`
	S3           S3Config `mapstructure:"s3" toml:"s3"`
}

// Path joins a state file name onto the state directory
func (s StateConfig) Path(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.Dir, file)
}

// S3Config mirrors the state directory to an S3-compatible bucket between runs
type S3Config struct {
	Enabled         bool   `mapstructure:"enabled" toml:"enabled"`
	Bucket          string `mapstructure:"bucket" toml:"bucket"`
	Prefix          string `mapstructure:"prefix" toml:"prefix"`
	Region          string `mapstructure:"region" toml:"region"`
	Endpoint        string `mapstructure:"endpoint" toml:"endpoint"` // MinIO and friends
	AccessKeyID     string `mapstructure:"access_key_id" toml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" toml:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style" toml:"use_path_style"`
}

// HeartbeatConfig configures the weekly liveness alert
type HeartbeatConfig struct {
	Enabled  bool   `mapstructure:"enabled" toml:"enabled"`
	Weekday  string `mapstructure:"weekday" toml:"weekday"`
	Timezone string `mapstructure:"timezone" toml:"timezone"` // IANA name; empty = local
}

// NotifyConfig selects the alert channel
type NotifyConfig struct {
	Channel      string `mapstructure:"channel" toml:"channel"`               // discord or telegram
	MaxPerMinute int    `mapstructure:"max_per_minute" toml:"max_per_minute"` // 0 = unpaced
}

// TelegramConfig configures the optional Telegram channel
type TelegramConfig struct {
	Token  string `mapstructure:"token" toml:"token"`
	ChatID int64  `mapstructure:"chat_id" toml:"chat_id"`
}

// LogConfig configures console output
type LogConfig struct {
	Theme string `mapstructure:"theme" toml:"theme"`
	JSON  bool   `mapstructure:"json" toml:"json"`
}
