package state

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
)

// FileStore keeps one JSON document per stream plus one for the monitor,
// all under the state directory
type FileStore struct {
	cfg     am.StateConfig
	streams am.StreamsConfig
	logger  *zap.SugaredLogger
}

// NewFileStore creates a FileStore. Nothing touches the disk until the
// first Load or Save.
func NewFileStore(cfg am.StateConfig, streams am.StreamsConfig, log *zap.SugaredLogger) *FileStore {
	return &FileStore{
		cfg:     cfg,
		streams: streams,
		logger:  logger.OrNop(log).With(logger.FieldBackend, am.BackendJSON),
	}
}

// Backend implements Store
func (s *FileStore) Backend() string { return am.BackendJSON }

// Close implements Store
func (s *FileStore) Close() error { return nil }

// StreamPath returns the state file of a stream
func (s *FileStore) StreamPath(stream string) (string, error) {
	sc, ok := s.streams.ByName(stream)
	if !ok || sc.StateFile == "" {
		return "", errors.Newf("no state file configured for stream %q", stream)
	}
	return s.cfg.Path(sc.StateFile), nil
}

// MonitorPath returns the monitor state file
func (s *FileStore) MonitorPath() string {
	return s.cfg.Path(s.cfg.MonitorFile)
}

// Paths lists every state file this store reads or writes
func (s *FileStore) Paths() []string {
	var paths []string
	for _, name := range am.StreamNames {
		if p, err := s.StreamPath(name); err == nil {
			paths = append(paths, p)
		}
	}
	return append(paths, s.MonitorPath())
}

// Load implements Store
func (s *FileStore) Load(ctx context.Context, stream string) (Map, error) {
	path, err := s.StreamPath(stream)
	if err != nil {
		return Map{}, err
	}
	return s.load(path)
}

// Save implements Store
func (s *FileStore) Save(ctx context.Context, stream string, m Map) error {
	path, err := s.StreamPath(stream)
	if err != nil {
		return err
	}
	return s.save(path, m)
}

// LoadMonitor implements Store
func (s *FileStore) LoadMonitor(ctx context.Context) (Map, error) {
	return s.load(s.MonitorPath())
}

// SaveMonitor implements Store
func (s *FileStore) SaveMonitor(ctx context.Context, m Map) error {
	return s.save(s.MonitorPath(), m)
}

func (s *FileStore) load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Map{}, nil
	}
	if err != nil {
		return Map{}, errors.Wrapf(err, "failed to read %s", path)
	}
	m, err := decodeMap(data)
	if err != nil {
		return m, errors.WithDetailf(err, "file: %s", path)
	}
	return m, nil
}

func (s *FileStore) save(path string, m Map) error {
	data, err := encodeMap(m)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	s.logger.Debugw("state saved", logger.FieldPath, path, logger.FieldCount, len(m))
	return nil
}

// writeFileAtomic replaces path with data via a temporary file in the same
// directory, so readers never observe a partial document
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create state directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}
