package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reblograffle/internal/announce"
	"reblograffle/internal/config"
	"reblograffle/internal/mastodon"
	"reblograffle/internal/raffle"
	"reblograffle/internal/storage"
	logx "reblograffle/pkg/logx"
)

// hookRecorder is a fake chat webhook.
type hookRecorder struct {
	mu     sync.Mutex
	status int
	posts  []announce.Message
}

func (h *hookRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var m announce.Message
	_ = json.NewDecoder(r.Body).Decode(&m)
	h.posts = append(h.posts, m)
	if h.status != 0 {
		w.WriteHeader(h.status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *hookRecorder) Posts() []announce.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]announce.Message(nil), h.posts...)
}

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHook(t *testing.T, status int) (*hookRecorder, *httptest.Server) {
	t.Helper()
	h := &hookRecorder{status: status}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, srv
}

func testConfig(sourceURL, webhookURL string) *config.Config {
	cfg := &config.Config{
		Source:  config.SourceConfig{URL: sourceURL},
		Webhook: config.WebhookConfig{URL: webhookURL},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func build(t *testing.T, cfg *config.Config, opts Options) *App {
	t.Helper()
	a, cleanup, err := Build(cfg, opts, logx.Nop())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	a.deps.Source = raffle.NewSeeded(1, 1)
	return a
}

func TestRunAnnouncesWinners(t *testing.T) {
	t.Parallel()
	src := serveJSON(t, `{"status":true,"message":[{"display_name":"A","acct":"a1"},{"display_name":"B","acct":"b1"}]}`)
	hook, hookSrv := newHook(t, 0)

	out, err := build(t, testConfig(src.URL, hookSrv.URL), Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Status)
	assert.Equal(t, config.DefaultDone, out.Message)

	posts := hook.Posts()
	require.Len(t, posts, 1)
	require.Len(t, posts[0].Embeds, 1)
	assert.Equal(t, config.DefaultUsername, posts[0].Username)
	assert.Equal(t, config.DefaultContent, posts[0].Content)
	assert.Equal(t, "Title", posts[0].Embeds[0].Title)
	assert.Equal(t, "https://google.com/", posts[0].Embeds[0].URL)

	fields := posts[0].Embeds[0].Fields
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	assert.Equal(t, []raffle.Winner{
		{Name: "A", Value: "@a1", Inline: false},
		{Name: "B", Value: "@b1", Inline: false},
	}, fields)

	data, ok := out.Data.(DrawData)
	require.True(t, ok)
	assert.Equal(t, 2, data.Entrants)
	assert.Len(t, data.Winners, 2)
}

func TestRunNoEntrantsStillAnnounces(t *testing.T) {
	t.Parallel()
	src := serveJSON(t, `{"status":true,"message":[]}`)
	hook, hookSrv := newHook(t, 0)

	out, err := build(t, testConfig(src.URL, hookSrv.URL), Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Status)

	posts := hook.Posts()
	require.Len(t, posts, 1)
	require.Len(t, posts[0].Embeds, 1)
	assert.NotNil(t, posts[0].Embeds[0].Fields)
	assert.Empty(t, posts[0].Embeds[0].Fields)
}

func TestRunCapsWinners(t *testing.T) {
	t.Parallel()
	var accounts []string
	for i := 0; i < 30; i++ {
		accounts = append(accounts, fmt.Sprintf(`{"display_name":"U%d","acct":"u%d"}`, i, i))
	}
	src := serveJSON(t, "["+strings.Join(accounts, ",")+"]")
	hook, hookSrv := newHook(t, 0)

	_, err := build(t, testConfig(src.URL, hookSrv.URL), Options{}).Run(context.Background())
	require.NoError(t, err)

	posts := hook.Posts()
	require.Len(t, posts, 1)
	fields := posts[0].Embeds[0].Fields
	assert.Len(t, fields, 11)
	seen := map[string]bool{}
	for _, f := range fields {
		assert.False(t, seen[f.Value], "duplicate winner %s", f.Value)
		seen[f.Value] = true
	}
}

func TestRunStatusFalseNeverPosts(t *testing.T) {
	t.Parallel()
	src := serveJSON(t, `{"status":false,"message":"not found"}`)
	hook, hookSrv := newHook(t, 0)

	out, err := build(t, testConfig(src.URL, hookSrv.URL), Options{}).Run(context.Background())
	require.Error(t, err)
	var fe *mastodon.FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Empty(t, hook.Posts())

	assert.False(t, out.Status)
	assert.Equal(t, config.DefaultFetchFailed, out.Message)
	assert.Equal(t, StageFetch, out.Data.(FailureData).Stage)
	assert.Equal(t, 1, ExitCode(err, false))
	assert.Equal(t, 0, ExitCode(err, true))
}

func TestRunConnectionRefusedNeverPosts(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	hook, hookSrv := newHook(t, 0)

	out, err := build(t, testConfig("http://"+addr+"/api/v1/statuses/1/reblogged_by", hookSrv.URL), Options{}).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, hook.Posts())
	assert.False(t, out.Status)
	assert.Equal(t, config.DefaultFetchFailed, out.Message)
}

func TestRunNotifyFailure(t *testing.T) {
	t.Parallel()
	src := serveJSON(t, `[{"display_name":"A","acct":"a1"}]`)
	hook, hookSrv := newHook(t, http.StatusInternalServerError)

	out, err := build(t, testConfig(src.URL, hookSrv.URL), Options{}).Run(context.Background())
	var ne *announce.NotifyError
	require.ErrorAs(t, err, &ne)
	assert.Len(t, hook.Posts(), 1)
	assert.False(t, out.Status)
	assert.Equal(t, config.DefaultNotifyFailed, out.Message)
	assert.Equal(t, StageNotify, out.Data.(FailureData).Stage)
}

func TestRunWithoutAnnouncer(t *testing.T) {
	t.Parallel()
	src := serveJSON(t, `[{"display_name":"A","acct":"a1"}]`)

	_, err := build(t, testConfig(src.URL, ""), Options{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoAnnouncer)
}

func TestRunDryRunRecordsHistory(t *testing.T) {
	t.Parallel()
	src := serveJSON(t, `[{"display_name":"A","acct":"a1"},{"display_name":"Host","acct":"owner"}]`)
	hook, hookSrv := newHook(t, 0)

	cfg := testConfig(src.URL, hookSrv.URL)
	cfg.Raffle.Exclude = []string{"@owner"}
	cfg.Storage = &config.StorageConfig{Driver: "file", Path: filepath.Join(t.TempDir(), "history.jsonl")}

	out, err := build(t, cfg, Options{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hook.Posts())
	assert.True(t, out.Status)
	assert.Equal(t, []raffle.Winner{{Name: "A", Value: "@a1"}}, out.Data.(DrawData).Winners)

	st, err := OpenHistory(cfg, logx.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	draws, err := st.ListDraws(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.True(t, draws[0].OK)
	assert.True(t, draws[0].DryRun)
	assert.Equal(t, 1, draws[0].Entrants)
}

type fixedConfirmer struct {
	answer bool
	err    error
	seen   []raffle.Winner
}

func (f *fixedConfirmer) Confirm(w []raffle.Winner) (bool, error) {
	f.seen = w
	return f.answer, f.err
}

func TestRunConfirm(t *testing.T) {
	t.Parallel()
	src := serveJSON(t, `[{"display_name":"A","acct":"a1"}]`)

	t.Run("declined", func(t *testing.T) {
		hook, hookSrv := newHook(t, 0)
		a := build(t, testConfig(src.URL, hookSrv.URL), Options{})
		c := &fixedConfirmer{answer: false}
		a.opts.Confirm = true
		a.deps.Confirmer = c

		out, err := a.Run(context.Background())
		assert.ErrorIs(t, err, ErrCancelled)
		assert.Empty(t, hook.Posts())
		assert.Len(t, c.seen, 1)
		assert.False(t, out.Status)
		assert.Equal(t, 0, ExitCode(err, false))
	})

	t.Run("accepted", func(t *testing.T) {
		hook, hookSrv := newHook(t, 0)
		a := build(t, testConfig(src.URL, hookSrv.URL), Options{})
		a.opts.Confirm = true
		a.deps.Confirmer = &fixedConfirmer{answer: true}

		_, err := a.Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, hook.Posts(), 1)
	})
}

func TestNewRequiresConfirmer(t *testing.T) {
	t.Parallel()
	_, err := New(testConfig("https://a.test", ""), Options{Confirm: true}, Deps{Fetcher: mastodon.New(mastodon.Config{}, logx.Nop())})
	assert.Error(t, err)
}

func TestRunWaitsForSchedule(t *testing.T) {
	t.Parallel()
	src := serveJSON(t, `[{"display_name":"A","acct":"a1"}]`)
	_, hookSrv := newHook(t, 0)

	cfg := testConfig(src.URL, hookSrv.URL)
	cfg.Raffle.DrawAt = "0 20 * * *"
	cfg.Raffle.Timezone = "UTC"
	a := build(t, cfg, Options{})

	now := time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
	var slept time.Duration
	a.deps.Now = func() time.Time { return now }
	a.deps.Sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, slept)
}

func TestRunScheduleCancelled(t *testing.T) {
	t.Parallel()
	var hits int
	var mu sync.Mutex
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(src.Close)
	_, hookSrv := newHook(t, 0)

	cfg := testConfig(src.URL, hookSrv.URL)
	cfg.Raffle.DrawAt = "@daily"
	a := build(t, cfg, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, out.Status)
	assert.Equal(t, StageSchedule, out.Data.(FailureData).Stage)
	mu.Lock()
	assert.Zero(t, hits)
	mu.Unlock()
}

func TestNewRejectsBadSchedule(t *testing.T) {
	t.Parallel()
	cfg := testConfig("https://a.test", "")
	cfg.Raffle.DrawAt = "every tuesday"
	_, err := New(cfg, Options{}, Deps{Fetcher: mastodon.New(mastodon.Config{}, logx.Nop())})
	assert.Error(t, err)

	cfg.Raffle.DrawAt = "@hourly"
	cfg.Raffle.Timezone = "Mars/Olympus"
	_, err = New(cfg, Options{}, Deps{Fetcher: mastodon.New(mastodon.Config{}, logx.Nop())})
	assert.Error(t, err)
}

func TestWriteOutcome(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteOutcome(&buf, Outcome{Status: false, Message: "x"}))
	assert.JSONEq(t, `{"status":false,"message":"x","data":{}}`, buf.String())
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, ExitCode(nil, false))
	assert.Equal(t, 0, ExitCode(fmt.Errorf("wrapped: %w", ErrCancelled), false))
	assert.Equal(t, 1, ExitCode(errors.New("boom"), false))
}

func TestMapStorageConfig(t *testing.T) {
	t.Parallel()
	_, enabled, err := mapStorageConfig(&config.Config{})
	require.NoError(t, err)
	assert.False(t, enabled)

	sc, enabled, err := mapStorageConfig(&config.Config{Storage: &config.StorageConfig{Driver: "SQLite", Path: "x.db"}})
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, time.Second, sc.BusyTimeout)

	_, _, err = mapStorageConfig(&config.Config{Storage: &config.StorageConfig{Driver: "sqlite"}})
	assert.Error(t, err)

	_, err = OpenHistory(&config.Config{}, logx.Nop())
	assert.ErrorIs(t, err, storage.ErrDisabled)
}
