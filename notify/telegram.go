package notify

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
)

// Telegram sends messages to one chat through the Bot API
type Telegram struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewTelegram creates a Telegram notifier. No request is made until the
// first Send. endpoint overrides the Bot API endpoint format when non-empty.
func NewTelegram(client tgbotapi.HTTPClient, cfg am.TelegramConfig, endpoint string, maxPerMinute int, log *zap.SugaredLogger) *Telegram {
	api := &tgbotapi.BotAPI{
		Token:  cfg.Token,
		Client: client,
		Buffer: 100,
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api.SetAPIEndpoint(endpoint)

	return &Telegram{
		api:     api,
		chatID:  cfg.ChatID,
		limiter: newLimiter(maxPerMinute),
		logger:  logger.OrNop(log),
	}
}

// Send delivers msg as a plain-text chat message
func (t *Telegram) Send(ctx context.Context, msg Message) error {
	log := logger.FromContext(ctx, t.logger)
	if t.api.Token == "" || t.chatID == 0 {
		log.Warnw("telegram not configured, alert not sent", "title", msg.Title)
		return errors.WithHint(errors.ErrNotConfigured, "set telegram.token and telegram.chat_id")
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "waiting for send slot")
		}
	}

	out := tgbotapi.NewMessage(t.chatID, RenderText(msg))
	out.DisableWebPagePreview = true
	if _, err := t.api.Send(out); err != nil {
		log.Errorw("failed to send telegram alert", "title", msg.Title, logger.FieldError, err.Error())
		return errors.Wrap(err, "telegram delivery failed")
	}
	return nil
}

// RenderText flattens msg into plain text
func RenderText(msg Message) string {
	var b strings.Builder
	b.WriteString(msg.Title)
	if msg.URL != "" {
		b.WriteString("\n")
		b.WriteString(msg.URL)
	}
	if msg.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(msg.Description)
	}
	if len(msg.Fields) > 0 {
		b.WriteString("\n")
	}
	for _, f := range msg.Fields {
		b.WriteString("\n")
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	if msg.Footer != "" {
		b.WriteString("\n\n")
		b.WriteString(msg.Footer)
	}
	return b.String()
}
