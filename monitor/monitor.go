// Package monitor runs one monitoring cycle over every enabled stream.
//
// A cycle is strictly sequential: for each stream it loads state, fetches,
// keyword-filters, alerts on new or changed records, and saves state once.
// The weekly heartbeat runs last. Nothing in a cycle is fatal; failures are
// logged and reported in the Summary.
package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/db"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
	"github.com/teranos/wbwatch/match"
	"github.com/teranos/wbwatch/notify"
	"github.com/teranos/wbwatch/record"
	"github.com/teranos/wbwatch/state"
	"github.com/teranos/wbwatch/stream"
	"github.com/teranos/wbwatch/sym"
)

// timeNow is replaced in tests
var timeNow = time.Now

// StreamResult reports one stream's part of a cycle
type StreamResult struct {
	Stream   string
	Label    string
	Symbol   string
	Fetched  int  // records returned by the source
	Matched  int  // records matching a keyword
	Complete bool // false when the fetch stopped early
	Skipped  bool // stream not processed (state unreadable)
	Tally    Tally
	StateLen int // ids in state after the cycle
	FetchErr error
	LoadErr  error
	SaveErr  error
}

// Summary reports a whole cycle
type Summary struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	DryRun    bool
	Streams   []StreamResult
	Heartbeat string
	Err       error // heartbeat delivery or monitor state failures
}

// Alerts is the total of delivered alerts
func (s *Summary) Alerts() int {
	n := 0
	for _, r := range s.Streams {
		n += r.Tally.Alerts()
	}
	return n
}

// Degraded lists streams whose fetch was incomplete or that were skipped
func (s *Summary) Degraded() []string {
	var out []string
	for _, r := range s.Streams {
		if !r.Complete || r.Skipped {
			out = append(out, r.Stream)
		}
	}
	return out
}

// Runner executes cycles over a fixed set of streams
type Runner struct {
	cfg      *am.Config
	streams  []stream.Descriptor
	store    state.Store
	notifier notify.Notifier
	matcher  *match.Matcher
	dryRun   bool
	logger   *zap.SugaredLogger
}

// NewRunner creates a Runner. streams are processed in the given order.
func NewRunner(cfg *am.Config, streams []stream.Descriptor, store state.Store, n notify.Notifier, log *zap.SugaredLogger) *Runner {
	return &Runner{
		cfg:      cfg,
		streams:  streams,
		store:    store,
		notifier: n,
		matcher:  match.New(cfg.Keywords.Terms),
		logger:   logger.OrNop(log),
	}
}

// SetDryRun marks summaries as dry runs. The caller supplies a read-only
// store and a logging notifier.
func (r *Runner) SetDryRun(dryRun bool) {
	r.dryRun = dryRun
}

// Run executes one cycle
func (r *Runner) Run(ctx context.Context) *Summary {
	sum := &Summary{
		RunID:   uuid.NewString(),
		Started: timeNow(),
		DryRun:  r.dryRun,
	}
	ctx = logger.WithRunID(ctx, sum.RunID)
	log := logger.FromContext(ctx, r.logger)

	log.Infow("run started",
		logger.FieldSymbol, sym.Run,
		logger.FieldBackend, r.store.Backend(),
		"streams", len(r.streams),
		"keywords", r.matcher.Len(),
		"dry_run", r.dryRun)

	monitorState, err := r.store.LoadMonitor(ctx)
	if err != nil {
		log.Warnw("monitor state unreadable, starting empty", logger.FieldError, err.Error())
		monitorState = state.Map{}
	}

	for _, d := range r.streams {
		sum.Streams = append(sum.Streams, r.runStream(ctx, d))
	}

	sum.Heartbeat = r.heartbeat(ctx, sum, monitorState)
	sum.Duration = timeNow().Sub(sum.Started)

	log.Infow("run complete",
		logger.FieldSymbol, sym.Run,
		logger.FieldAlerts, sum.Alerts(),
		"heartbeat", sum.Heartbeat,
		"degraded", sum.Degraded(),
		logger.FieldDurationMS, sum.Duration.Milliseconds())
	return sum
}

func (r *Runner) runStream(ctx context.Context, d stream.Descriptor) StreamResult {
	ctx = logger.WithStream(ctx, d.Name)
	log := logger.FromContext(ctx, r.logger)
	res := StreamResult{Stream: d.Name, Label: d.Label, Symbol: d.Symbol, Complete: true}

	st, err := r.store.Load(ctx, d.Name)
	if err != nil {
		if !errors.Is(err, state.ErrCorrupt) {
			// saving over state we could not read would drop every record
			res.Skipped = true
			res.LoadErr = err
			if db.IsDatabaseClosed(err) {
				log.Errorw("state database closed, stream skipped this run", logger.FieldError, err.Error())
				return res
			}
			log.Errorw("state unreadable, stream skipped this run", logger.FieldError, err.Error())
			return res
		}
		log.Warnw("state corrupt, treating as empty", logger.FieldError, err.Error())
		res.LoadErr = err
		st = state.Map{}
	}
	log.Debugw("state loaded", logger.FieldCount, len(st))

	batch := d.Source.Fetch(ctx)
	res.Fetched = len(batch.Records)
	res.Complete = batch.Complete
	res.FetchErr = batch.Err
	if !batch.Complete {
		log.Warnw("fetch incomplete", logger.FieldCount, res.Fetched, logger.FieldError, errString(batch.Err))
	}

	var matched []record.Raw
	for _, raw := range batch.Records {
		if r.matcher.Matches(d.SearchText(raw)) {
			matched = append(matched, raw)
		}
	}
	res.Matched = len(matched)
	log.Infow("records filtered",
		logger.FieldSymbol, d.Symbol,
		logger.FieldTotalCount, res.Fetched,
		logger.FieldCount, res.Matched)

	res.Tally = Process(ctx, d, matched, st, r.notifier, r.logger)
	res.StateLen = len(st)

	if err := r.store.Save(ctx, d.Name, st); err != nil {
		res.SaveErr = err
		log.Errorw("failed to save state, delivered alerts may repeat next run",
			logger.FieldError, err.Error())
	} else {
		log.Infow("state saved",
			logger.FieldCount, res.StateLen,
			logger.FieldAlerts, res.Tally.Alerts())
	}
	return res
}

func (r *Runner) heartbeat(ctx context.Context, sum *Summary, monitorState state.Map) string {
	log := logger.FromContext(ctx, r.logger).With(logger.FieldSymbol, sym.Heartbeat)
	hb := r.cfg.Heartbeat
	if !hb.Enabled {
		return HeartbeatDisabled
	}

	day, err := hb.Day()
	if err != nil {
		sum.Err = errors.CombineErrors(sum.Err, err)
		return HeartbeatFailed
	}
	loc, err := hb.Location()
	if err != nil {
		sum.Err = errors.CombineErrors(sum.Err, err)
		return HeartbeatFailed
	}

	due, today := HeartbeatDue(timeNow().In(loc), day, monitorState[state.KeyLastHeartbeat])
	if !due {
		if monitorState[state.KeyLastHeartbeat] == today {
			return HeartbeatAlready
		}
		return HeartbeatNotDue
	}

	if err := r.notifier.Send(ctx, HeartbeatMessage(sum.Streams, r.cfg.Region.CountryName)); err != nil {
		log.Warnw("heartbeat not delivered", logger.FieldError, err.Error())
		sum.Err = errors.CombineErrors(sum.Err, errors.Wrap(err, "heartbeat"))
		return HeartbeatFailed
	}

	monitorState[state.KeyLastHeartbeat] = today
	if err := r.store.SaveMonitor(ctx, monitorState); err != nil {
		log.Errorw("failed to save monitor state", logger.FieldError, err.Error())
		sum.Err = errors.CombineErrors(sum.Err, err)
	}
	log.Infow("heartbeat sent", "date", today)
	return HeartbeatSent
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
