package state

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/wbwatch/logger"
)

// ReadOnly wraps a Store so saves are logged and dropped
type ReadOnly struct {
	Store
	logger *zap.SugaredLogger
}

// NewReadOnly wraps s
func NewReadOnly(s Store, log *zap.SugaredLogger) *ReadOnly {
	return &ReadOnly{Store: s, logger: logger.OrNop(log)}
}

// Save implements Store without writing
func (r *ReadOnly) Save(ctx context.Context, stream string, m Map) error {
	logger.FromContext(ctx, r.logger).Infow("dry run: state not written", logger.FieldCount, len(m))
	return nil
}

// SaveMonitor implements Store without writing
func (r *ReadOnly) SaveMonitor(ctx context.Context, m Map) error {
	logger.FromContext(ctx, r.logger).Infow("dry run: monitor state not written")
	return nil
}

// Memory is a Store held in process memory
type Memory struct {
	Streams map[string]Map
	Monitor Map
	// SaveErr, when set, fails every save
	SaveErr error
	Saves   int
}

// NewMemory creates an empty Memory store
func NewMemory() *Memory {
	return &Memory{Streams: map[string]Map{}, Monitor: Map{}}
}

// Backend implements Store
func (m *Memory) Backend() string { return "memory" }

// Close implements Store
func (m *Memory) Close() error { return nil }

// Load implements Store
func (m *Memory) Load(ctx context.Context, stream string) (Map, error) {
	return m.Streams[stream].Clone(), nil
}

// Save implements Store
func (m *Memory) Save(ctx context.Context, stream string, s Map) error {
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Streams[stream] = s.Clone()
	return nil
}

// LoadMonitor implements Store
func (m *Memory) LoadMonitor(ctx context.Context) (Map, error) {
	return m.Monitor.Clone(), nil
}

// SaveMonitor implements Store
func (m *Memory) SaveMonitor(ctx context.Context, s Map) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Monitor = s.Clone()
	return nil
}
