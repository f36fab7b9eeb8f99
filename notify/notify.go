// Package notify delivers alerts to a chat channel.
//
// A Notifier reports success only when the channel accepted the message;
// callers commit change-detection state on that signal alone.
package notify

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/wbwatch/logger"
)

// Message is a channel-neutral rich alert
type Message struct {
	Title       string
	URL         string
	Color       int
	Description string // optional
	Fields      []Field
	Footer      string
}

// Field is one labelled value of a Message
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Notifier sends one message. A nil error means the channel accepted it.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// placeholderMarker marks a webhook URL left at its template value
const placeholderMarker = "REPLACE_ME"

// Configured reports whether a webhook URL can be used. Empty URLs and
// URLs still holding the template placeholder are not.
func Configured(webhookURL string) bool {
	u := strings.TrimSpace(webhookURL)
	return u != "" && !strings.Contains(u, placeholderMarker)
}

// newLimiter paces sends to perMinute; 0 disables pacing
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
}

// DryRun logs every message and reports it as delivered without contacting
// any channel.
type DryRun struct {
	logger *zap.SugaredLogger
}

// NewDryRun creates a DryRun notifier
func NewDryRun(log *zap.SugaredLogger) *DryRun {
	return &DryRun{logger: logger.OrNop(log)}
}

// Send logs msg
func (d *DryRun) Send(ctx context.Context, msg Message) error {
	logger.FromContext(ctx, d.logger).Infow("dry run: would send alert",
		"title", msg.Title,
		logger.FieldURL, msg.URL)
	return nil
}
