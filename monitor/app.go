package monitor

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/internal/httpclient"
	"github.com/teranos/wbwatch/logger"
	"github.com/teranos/wbwatch/notify"
	"github.com/teranos/wbwatch/state"
	"github.com/teranos/wbwatch/stream"
)

// Options tune Execute
type Options struct {
	DryRun bool
}

// Execute wires a Runner from cfg and runs one cycle around it: take the
// run lock, restore mirrored state, run, upload state, release the lock.
//
// The error is non-nil only when the cycle could not start (lock held,
// store unopenable). Failures inside the cycle are in the Summary.
func Execute(ctx context.Context, cfg *am.Config, opts Options, log *zap.SugaredLogger) (*Summary, error) {
	log = logger.OrNop(log)

	if cfg.State.Lock && !opts.DryRun {
		lock, err := state.AcquireLock(cfg.State.Path(state.LockFileName), state.DefaultLockStaleAfter)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.Warnw("failed to release lock", logger.FieldError, err.Error())
			}
		}()
	}

	files := state.NewFileStore(cfg.State, cfg.Streams, log)
	var mirror *state.S3Mirror
	if cfg.State.S3.Enabled {
		m, err := state.NewS3Mirror(ctx, cfg.State.S3, log.Named("s3"))
		if err != nil {
			log.Warnw("state mirror unavailable, using local state only", logger.FieldError, err.Error())
		} else {
			mirror = m
			if err := mirror.Restore(ctx, files.Paths()); err != nil {
				log.Warnw("state restore incomplete", logger.FieldError, err.Error())
			}
		}
	}

	store, err := state.Open(cfg, log.Named("state"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open state store")
	}
	defer store.Close()
	if opts.DryRun {
		store = state.NewReadOnly(store, log)
	}

	client := httpclient.NewRetryClient(
		httpclient.NewSaferClient(cfg.HTTP.Timeout(), cfg.HTTP.BlockPrivateIP),
		httpclient.RetryConfig{
			MaxAttempts: cfg.HTTP.MaxRetries,
			Backoff:     cfg.HTTP.Backoff(),
			UserAgent:   cfg.HTTP.UserAgent,
		},
		log.Named("http"),
	)

	runner := NewRunner(cfg,
		stream.Enabled(cfg, client, log.Named("source")),
		store,
		NewNotifier(cfg, client, opts.DryRun, log.Named("notify")),
		log)
	runner.SetDryRun(opts.DryRun)

	summary := runner.Run(ctx)

	if mirror != nil && !opts.DryRun {
		if err := mirror.Upload(ctx, files.Paths()); err != nil {
			log.Warnw("state upload incomplete", logger.FieldError, err.Error())
		}
	}
	return summary, nil
}

// NewNotifier selects the configured alert channel
func NewNotifier(cfg *am.Config, client *httpclient.RetryClient, dryRun bool, log *zap.SugaredLogger) notify.Notifier {
	if dryRun {
		return notify.NewDryRun(log)
	}
	if cfg.Notify.Channel == am.ChannelTelegram {
		return notify.NewTelegram(client.RequestDoer(), cfg.Telegram, "", cfg.Notify.MaxPerMinute, log)
	}
	return notify.NewDiscord(client, cfg.Webhook, cfg.Notify.MaxPerMinute, log)
}
