package monitor

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/wbwatch/logger"
	"github.com/teranos/wbwatch/notify"
	"github.com/teranos/wbwatch/record"
	"github.com/teranos/wbwatch/state"
	"github.com/teranos/wbwatch/stream"
)

// Decision is the outcome of comparing a record with stream state
type Decision int

const (
	// Skip means the record was alerted at its current marker already
	Skip Decision = iota
	// New means the record id has never been alerted
	New
	// Update means the record was alerted before at a different marker
	Update
)

func (d Decision) String() string {
	switch d {
	case New:
		return "NEW"
	case Update:
		return "UPDATE"
	}
	return "SKIP"
}

// Classify compares rec with st. An id absent from st is New whatever its
// marker, including "". prev is the stored marker when the id is present.
func Classify(st state.Map, rec record.Record) (d Decision, prev string) {
	prev, seen := st[rec.ID]
	switch {
	case !seen:
		return New, ""
	case prev == rec.Marker:
		return Skip, prev
	default:
		return Update, prev
	}
}

// Tally counts what Process did with a stream's matched records
type Tally struct {
	Considered int // matched records examined
	NoID       int // skipped for lack of an id
	Unchanged  int
	New        int // alerts delivered for new records
	Updated    int // alerts delivered for updated records
	Failed     int // sends that failed; those records stay pending
}

// Alerts is the number of delivered alerts
func (t Tally) Alerts() int {
	return t.New + t.Updated
}

// Process runs diff, notify and commit over matched records in order.
//
// st is updated in place: st[id] = marker is written only after n accepted
// the alert, so a failed send leaves the record to be retried next run. A
// record repeated later in the same batch is compared against the updated
// st and does not alert twice.
func Process(ctx context.Context, d stream.Descriptor, matched []record.Raw, st state.Map, n notify.Notifier, log *zap.SugaredLogger) Tally {
	log = logger.FromContext(ctx, log)
	var t Tally

	for _, raw := range matched {
		if ctx.Err() != nil {
			log.Warnw("run cancelled, remaining records left pending", logger.FieldCount, len(matched)-t.Considered)
			break
		}
		t.Considered++

		rec, ok := d.Identify(raw)
		if !ok {
			t.NoID++
			log.Debugw("record has no id, skipped")
			continue
		}

		decision, prev := Classify(st, rec)
		if decision == Skip {
			t.Unchanged++
			log.Debugw("unchanged",
				logger.FieldAction, decision.String(),
				logger.FieldRecordID, rec.ID)
			continue
		}

		fields := []interface{}{
			logger.FieldAction, decision.String(),
			logger.FieldRecordID, rec.ID,
			logger.FieldMarker, rec.Marker,
		}
		if decision == Update {
			fields = append(fields, logger.FieldPreviousMarker, prev)
		}
		log.Infow("change detected", fields...)

		if err := n.Send(ctx, d.Render(rec, decision == Update)); err != nil {
			t.Failed++
			log.Warnw("alert not delivered, record stays pending",
				logger.FieldRecordID, rec.ID,
				logger.FieldError, err.Error())
			continue
		}

		st[rec.ID] = rec.Marker
		if decision == Update {
			t.Updated++
		} else {
			t.New++
		}
	}
	return t
}
