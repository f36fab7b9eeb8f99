package notify

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/internal/httpclient"
	"github.com/teranos/wbwatch/logger"
)

// Poster is the subset of httpclient.RetryClient Discord needs
type Poster interface {
	PostJSON(ctx context.Context, rawURL string, payload interface{}) (*httpclient.Response, error)
}

// WebhookPayload is the body of a Discord webhook execution
type WebhookPayload struct {
	Username string  `json:"username"`
	Embeds   []Embed `json:"embeds"`
}

// Embed is one Discord rich embed
type Embed struct {
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Color       int          `json:"color"`
	Description string       `json:"description,omitempty"`
	Fields      []EmbedField `json:"fields"`
	Footer      EmbedFooter  `json:"footer"`
}

// EmbedField is one name/value row of an embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter is the small text under an embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// Discord posts messages to a Discord-compatible webhook
type Discord struct {
	client   Poster
	url      string
	username string
	limiter  *rate.Limiter
	logger   *zap.SugaredLogger
}

// NewDiscord creates a webhook notifier. maxPerMinute of 0 sends unpaced.
func NewDiscord(client Poster, cfg am.WebhookConfig, maxPerMinute int, log *zap.SugaredLogger) *Discord {
	username := cfg.Username
	if username == "" {
		username = am.DefaultUsername
	}
	return &Discord{
		client:   client,
		url:      cfg.URL,
		username: username,
		limiter:  newLimiter(maxPerMinute),
		logger:   logger.OrNop(log),
	}
}

// Payload builds the webhook body for msg
func (d *Discord) Payload(msg Message) WebhookPayload {
	fields := make([]EmbedField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return WebhookPayload{
		Username: d.username,
		Embeds: []Embed{{
			Title:       msg.Title,
			URL:         msg.URL,
			Color:       msg.Color,
			Description: msg.Description,
			Fields:      fields,
			Footer:      EmbedFooter{Text: msg.Footer},
		}},
	}
}

// Send posts msg. An unconfigured webhook returns errors.ErrNotConfigured
// without any network traffic; a non-2xx answer is errors.ErrHTTPStatus.
func (d *Discord) Send(ctx context.Context, msg Message) error {
	log := logger.FromContext(ctx, d.logger)
	if !Configured(d.url) {
		log.Warnw("webhook URL not configured, alert not sent", "title", msg.Title)
		return errors.WithHint(errors.ErrNotConfigured,
			"set webhook.url in wbwatch.toml or WB_DISCORD_WEBHOOK_URL")
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "waiting for send slot")
		}
	}

	resp, err := d.client.PostJSON(ctx, d.url, d.Payload(msg))
	if err != nil {
		log.Errorw("failed to send webhook alert", "title", msg.Title, logger.FieldError, err.Error())
		return errors.Wrap(err, "webhook delivery failed")
	}
	if !resp.OK() {
		log.Errorw("webhook rejected alert",
			"title", msg.Title,
			logger.FieldStatus, resp.StatusCode,
			logger.FieldBody, errors.TruncateBody(string(resp.Body)))
		return errors.NewStatusError(resp.StatusCode, string(resp.Body))
	}

	log.Debugw("webhook alert sent", "title", msg.Title, logger.FieldStatus, resp.StatusCode)
	return nil
}
