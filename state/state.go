// Package state persists change-detection state.
//
// Each stream owns a Map of record id to the marker last alerted for it. A
// record is present only once its alert was delivered. The monitor keeps
// its own small Map (last heartbeat date). Stores always write a whole Map;
// there are no per-record writes.
package state

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
)

// KeyLastHeartbeat is the monitor state key holding the ISO date of the
// last delivered heartbeat
const KeyLastHeartbeat = "last_heartbeat_date"

// ErrCorrupt marks persisted state that could not be decoded. Loads that
// return it also return an empty Map, which callers use as-is.
var ErrCorrupt = errors.New("corrupt state")

// Map is one stream's record id to marker mapping
type Map map[string]string

// Clone returns an independent copy of m
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IDs returns the ids in m in lexical order
func (m Map) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store loads and saves stream and monitor state.
//
// Load of a stream or monitor that was never saved returns an empty Map and
// no error. Save replaces the stored Map entirely.
type Store interface {
	Load(ctx context.Context, stream string) (Map, error)
	Save(ctx context.Context, stream string, m Map) error
	LoadMonitor(ctx context.Context) (Map, error)
	SaveMonitor(ctx context.Context, m Map) error
	Backend() string
	Close() error
}

// Open creates the Store selected by cfg.State.Backend
func Open(cfg *am.Config, log *zap.SugaredLogger) (Store, error) {
	switch cfg.State.Backend {
	case am.BackendJSON, "":
		return NewFileStore(cfg.State, cfg.Streams, log), nil
	case am.BackendSQLite:
		return OpenSQLiteStore(cfg.State.Path(cfg.State.DatabasePath), log)
	case am.BackendBadger:
		return OpenBadgerStore(cfg.State.Path(cfg.State.DatabasePath), log)
	}
	return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown state backend %q", cfg.State.Backend)
}
