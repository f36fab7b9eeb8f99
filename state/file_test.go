package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	cfg := am.Defaults()
	cfg.State.Dir = t.TempDir()
	return NewFileStore(cfg.State, cfg.Streams, nil), cfg.State.Dir
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s, _ := newTestFileStore(t)

	m, err := s.Load(context.Background(), am.StreamProjects)
	require.NoError(t, err)
	assert.Empty(t, m)

	mon, err := s.LoadMonitor(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mon)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s, dir := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, am.StreamProjects, Map{"P100": "2024-01-01", "P200": ""}))

	m, err := s.Load(ctx, am.StreamProjects)
	require.NoError(t, err)
	assert.Equal(t, Map{"P100": "2024-01-01", "P200": ""}, m)

	data, err := os.ReadFile(filepath.Join(dir, "processed_projects.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"P100\": \"2024-01-01\",\n  \"P200\": \"\"\n}\n", string(data))

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_LegacyListFormat(t *testing.T) {
	s, dir := newTestFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_awards.json"), []byte(`["A", "B"]`), 0o600))

	m, err := s.Load(context.Background(), am.StreamAwards)
	require.NoError(t, err)
	assert.Equal(t, Map{"A": "", "B": ""}, m)
}

func TestFileStore_CorruptIsEmptyWithError(t *testing.T) {
	tests := map[string]string{
		"truncated": `{"P100": "2024`,
		"scalar":    `42`,
		"empty":     ``,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			s, dir := newTestFileStore(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_tenders.json"), []byte(body), 0o600))

			m, err := s.Load(context.Background(), am.StreamTenders)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorrupt))
			assert.NotNil(t, m)
			assert.Empty(t, m)
		})
	}
}

func TestFileStore_NonStringValues(t *testing.T) {
	s, dir := newTestFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "monitor_state.json"),
		[]byte(`{"last_heartbeat_date": "2024-06-03", "runs": 12, "flag": true, "gone": null}`), 0o600))

	m, err := s.LoadMonitor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Map{"last_heartbeat_date": "2024-06-03", "runs": "12", "flag": "true", "gone": ""}, m)
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	cfg := am.Defaults()
	cfg.State.Dir = filepath.Join(t.TempDir(), "nested", "state")
	s := NewFileStore(cfg.State, cfg.Streams, nil)

	require.NoError(t, s.SaveMonitor(context.Background(), Map{KeyLastHeartbeat: "2024-06-03"}))
	_, err := os.Stat(filepath.Join(cfg.State.Dir, "monitor_state.json"))
	assert.NoError(t, err)
}

func TestFileStore_UnknownStream(t *testing.T) {
	s, _ := newTestFileStore(t)
	_, err := s.Load(context.Background(), "nope")
	assert.Error(t, err)
	assert.Error(t, s.Save(context.Background(), "nope", Map{}))
}

func TestFileStore_Paths(t *testing.T) {
	s, dir := newTestFileStore(t)
	assert.Equal(t, []string{
		filepath.Join(dir, "processed_projects.json"),
		filepath.Join(dir, "processed_docs.json"),
		filepath.Join(dir, "processed_tenders.json"),
		filepath.Join(dir, "processed_awards.json"),
		filepath.Join(dir, "monitor_state.json"),
	}, s.Paths())
}
