package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/internal/httpclient"
	"github.com/teranos/wbwatch/notify"
	"github.com/teranos/wbwatch/state"
)

const projectsPayload = `{
  "total": 2,
  "rows": 50,
  "projects": {
    "P100": {"id": "P100", "project_name": "Nigeria GIS Land Registry", "countrycode": ["NG"], "p2a_updated_date": "2024-01-01"},
    "P200": {"id": "P200", "project_name": "Ghana GIS", "countrycode": ["GH"], "p2a_updated_date": "2024-01-01"}
  }
}`

type worldBankStub struct {
	server  *httptest.Server
	posts   atomic.Int32
	webhook atomic.Int32 // status returned to webhook posts
}

func newWorldBankStub(t *testing.T) *worldBankStub {
	t.Helper()
	stub := &worldBankStub{}
	stub.webhook.Store(http.StatusNoContent)

	mux := http.NewServeMux()
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NG", r.URL.Query().Get("countrycode_exact"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(projectsPayload))
	})
	mux.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		stub.posts.Add(1)
		w.WriteHeader(int(stub.webhook.Load()))
	})
	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func executeConfig(t *testing.T, stub *worldBankStub) *am.Config {
	t.Helper()
	cfg := testConfig()
	cfg.HTTP.BlockPrivateIP = false
	cfg.HTTP.BackoffSeconds = 0
	cfg.Notify.MaxPerMinute = 0
	cfg.Heartbeat.Enabled = false
	cfg.State.Dir = t.TempDir()
	cfg.Streams.Projects.URL = stub.server.URL + "/projects"
	cfg.Streams.ProcurementPlans.Enabled = false
	cfg.Webhook.URL = stub.server.URL + "/webhook"
	return cfg
}

func readState(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestExecute(t *testing.T) {
	setNow(t, tuesday)
	stub := newWorldBankStub(t)
	cfg := executeConfig(t, stub)
	statePath := filepath.Join(cfg.State.Dir, "processed_projects.json")

	sum, err := Execute(context.Background(), cfg, Options{}, nil)
	require.NoError(t, err)
	require.Len(t, sum.Streams, 1)
	assert.Equal(t, 1, sum.Streams[0].Fetched, "other countries are filtered out")
	assert.Equal(t, 1, sum.Alerts())
	assert.EqualValues(t, 1, stub.posts.Load())
	assert.Equal(t, map[string]string{"P100": "2024-01-01"}, readState(t, statePath))

	_, err = os.Stat(filepath.Join(cfg.State.Dir, state.LockFileName))
	assert.True(t, os.IsNotExist(err), "lock released after the run")

	sum, err = Execute(context.Background(), cfg, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Alerts())
	assert.EqualValues(t, 1, stub.posts.Load())
}

func TestExecute_WebhookRejected(t *testing.T) {
	setNow(t, tuesday)
	stub := newWorldBankStub(t)
	stub.webhook.Store(http.StatusBadRequest)
	cfg := executeConfig(t, stub)

	sum, err := Execute(context.Background(), cfg, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Streams[0].Tally.Failed)
	assert.Empty(t, readState(t, filepath.Join(cfg.State.Dir, "processed_projects.json")))

	stub.webhook.Store(http.StatusNoContent)
	sum, err = Execute(context.Background(), cfg, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Alerts())
}

func TestExecute_DryRun(t *testing.T) {
	setNow(t, monday)
	stub := newWorldBankStub(t)
	cfg := executeConfig(t, stub)
	cfg.Heartbeat.Enabled = true
	cfg.Heartbeat.Timezone = "UTC"

	sum, err := Execute(context.Background(), cfg, Options{DryRun: true}, nil)
	require.NoError(t, err)

	assert.True(t, sum.DryRun)
	assert.Equal(t, 1, sum.Alerts())
	assert.Equal(t, HeartbeatSent, sum.Heartbeat)
	assert.EqualValues(t, 0, stub.posts.Load())

	entries, err := os.ReadDir(cfg.State.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExecute_LockHeld(t *testing.T) {
	stub := newWorldBankStub(t)
	cfg := executeConfig(t, stub)

	lock, err := state.AcquireLock(cfg.State.Path(state.LockFileName), state.DefaultLockStaleAfter)
	require.NoError(t, err)
	defer lock.Release()

	_, err = Execute(context.Background(), cfg, Options{}, nil)
	assert.True(t, errors.Is(err, errors.ErrLocked))
	assert.EqualValues(t, 0, stub.posts.Load())
}

func TestNewNotifier(t *testing.T) {
	cfg := testConfig()
	client := httpclient.NewRetryClient(http.DefaultClient, httpclient.RetryConfig{MaxAttempts: 3}, nil)

	assert.IsType(t, &notify.DryRun{}, NewNotifier(cfg, client, true, nil))
	assert.IsType(t, &notify.Discord{}, NewNotifier(cfg, client, false, nil))

	cfg.Notify.Channel = am.ChannelTelegram
	cfg.Telegram = am.TelegramConfig{Token: "123:abc", ChatID: 42}
	assert.IsType(t, &notify.Telegram{}, NewNotifier(cfg, client, false, nil))
}
