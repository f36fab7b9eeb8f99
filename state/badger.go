package state

import (
	"context"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
)

// Key layout:
//
//	stream/<stream>/<record id> -> marker
//	monitor/<key>               -> value
const (
	badgerStreamPrefix  = "stream/"
	badgerMonitorPrefix = "monitor/"
)

// BadgerStore keeps state in an embedded Badger database directory
type BadgerStore struct {
	db     *badger.DB
	logger *zap.SugaredLogger
}

// OpenBadgerStore opens (creating if needed) the Badger directory at path
func OpenBadgerStore(path string, log *zap.SugaredLogger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.ERROR)
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger state at %s", path)
	}
	return &BadgerStore{
		db:     bdb,
		logger: logger.OrNop(log).With(logger.FieldBackend, am.BackendBadger),
	}, nil
}

// Backend implements Store
func (s *BadgerStore) Backend() string { return am.BackendBadger }

// Close implements Store
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func streamPrefix(stream string) string {
	return badgerStreamPrefix + stream + "/"
}

// Load implements Store
func (s *BadgerStore) Load(ctx context.Context, stream string) (Map, error) {
	return s.scan(streamPrefix(stream))
}

// Save implements Store
func (s *BadgerStore) Save(ctx context.Context, stream string, m Map) error {
	return s.replace(streamPrefix(stream), m)
}

// LoadMonitor implements Store
func (s *BadgerStore) LoadMonitor(ctx context.Context) (Map, error) {
	return s.scan(badgerMonitorPrefix)
}

// SaveMonitor implements Store
func (s *BadgerStore) SaveMonitor(ctx context.Context, m Map) error {
	return s.replace(badgerMonitorPrefix, m)
}

func (s *BadgerStore) scan(prefix string) (Map, error) {
	m := Map{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := strings.TrimPrefix(string(item.Key()), prefix)
			if err := item.Value(func(val []byte) error {
				m[key] = string(val)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Map{}, errors.Wrapf(err, "failed to read %s", prefix)
	}
	return m, nil
}

// replace rewrites every key under prefix in a single transaction
func (s *BadgerStore) replace(prefix string, m Map) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var stale [][]byte
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			key := it.Item().KeyCopy(nil)
			if _, keep := m[strings.TrimPrefix(string(key), prefix)]; !keep {
				stale = append(stale, key)
			}
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		for k, v := range m {
			if err := txn.Set([]byte(prefix+k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", prefix)
	}
	s.logger.Debugw("state saved", "prefix", prefix, logger.FieldCount, len(m))
	return nil
}
