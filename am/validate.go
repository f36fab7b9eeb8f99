package am

import (
	"strings"
	"time"

	"github.com/teranos/wbwatch/errors"
)

// Validate checks that the configuration is usable for a run.
// The webhook URL is deliberately not checked here: a placeholder URL is a
// valid configuration that makes every send report "not configured".
func (c *Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return invalid("http.timeout_seconds must be > 0, got %d", c.HTTP.TimeoutSeconds)
	}
	if c.HTTP.MaxRetries < 1 {
		return invalid("http.max_retries must be >= 1, got %d", c.HTTP.MaxRetries)
	}
	if c.HTTP.BackoffSeconds < 0 {
		return invalid("http.backoff_seconds must be >= 0, got %d", c.HTTP.BackoffSeconds)
	}

	if strings.TrimSpace(c.Region.CountryCode) == "" {
		return invalid("region.country_code cannot be empty")
	}

	if len(c.Keywords.Terms) == 0 {
		return errors.WithHint(invalid("keywords.terms cannot be empty"),
			"an empty keyword set matches nothing; set keywords.terms or keywords.file")
	}

	for _, name := range StreamNames {
		s, _ := c.Streams.ByName(name)
		if !s.Enabled {
			continue
		}
		if s.URL == "" {
			return invalid("streams.%s.url cannot be empty when enabled", name)
		}
		if s.RowsPerPage <= 0 {
			return invalid("streams.%s.rows_per_page must be > 0, got %d", name, s.RowsPerPage)
		}
		if s.MaxPages < 0 {
			return invalid("streams.%s.max_pages must be >= 0, got %d", name, s.MaxPages)
		}
		if c.State.Backend == BackendJSON && s.StateFile == "" {
			return invalid("streams.%s.state_file cannot be empty with the json backend", name)
		}
	}

	switch c.State.Backend {
	case BackendJSON, BackendBadger:
		if c.State.Dir == "" {
			return invalid("state.dir cannot be empty with the %s backend", c.State.Backend)
		}
	case BackendSQLite:
		if c.State.DatabasePath == "" {
			return invalid("state.database_path cannot be empty with the sqlite backend")
		}
	default:
		return invalid("state.backend must be one of json, sqlite, badger, got %q", c.State.Backend)
	}

	if c.State.S3.Enabled {
		if c.State.Backend != BackendJSON {
			return invalid("state.s3 mirroring requires the json backend, got %q", c.State.Backend)
		}
		if c.State.S3.Bucket == "" || c.State.S3.Region == "" {
			return invalid("state.s3.bucket and state.s3.region are required when state.s3.enabled")
		}
	}

	if c.Heartbeat.Enabled {
		if _, err := c.Heartbeat.Day(); err != nil {
			return err
		}
		if _, err := c.Heartbeat.Location(); err != nil {
			return err
		}
	}

	switch c.Notify.Channel {
	case ChannelDiscord:
	case ChannelTelegram:
		if c.Telegram.Token == "" || c.Telegram.ChatID == 0 {
			return invalid("telegram.token and telegram.chat_id are required for the telegram channel")
		}
	default:
		return invalid("notify.channel must be discord or telegram, got %q", c.Notify.Channel)
	}
	if c.Notify.MaxPerMinute < 0 {
		return invalid("notify.max_per_minute must be >= 0, got %d", c.Notify.MaxPerMinute)
	}

	return nil
}

// Day parses the configured heartbeat weekday
func (h HeartbeatConfig) Day() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(h.Weekday))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, invalid("heartbeat.weekday %q is not a weekday name", h.Weekday)
}

// Location resolves the heartbeat timezone; empty means the host's local zone.
func (h HeartbeatConfig) Location() (*time.Location, error) {
	if h.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return nil, errors.WithDetail(invalid("heartbeat.timezone %q", h.Timezone), err.Error())
	}
	return loc, nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(errors.ErrInvalidConfig, format, args...)
}
