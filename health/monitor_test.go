package health_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhub/team-portal/health"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type staticSource struct {
	servers []health.Server
}

func (s staticSource) ListServers(context.Context) ([]health.Server, error) {
	return s.servers, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) Notify(_ context.Context, server health.Server, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, server.Name)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// fakeClock steps time manually through cooldown windows.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMonitor(servers []health.Server, notifier health.Notifier, clock *fakeClock) *health.Monitor {
	return health.NewMonitor(
		staticSource{servers: servers},
		notifier,
		time.Hour,
		zerolog.Nop(),
		health.WithClock(clock.Now),
		health.WithClient(&http.Client{Timeout: time.Second}),
	)
}

// =============================================================================
// PROBING
// =============================================================================

func TestCheckAll_HealthyAndUnhealthyMix(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	notifier := &recordingNotifier{}
	monitor := newTestMonitor([]health.Server{
		{ID: 1, Name: "up", URL: up.URL},
		{ID: 2, Name: "down", URL: down.URL},
	}, notifier, &fakeClock{now: time.Unix(1000, 0)})

	results, err := monitor.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Healthy)
	assert.Equal(t, http.StatusOK, results[0].StatusCode)
	assert.Empty(t, results[0].Error)

	assert.False(t, results[1].Healthy)
	assert.Equal(t, http.StatusInternalServerError, results[1].StatusCode)
	assert.NotEmpty(t, results[1].Error)
}

func TestCheckAll_UnreachableServer(t *testing.T) {
	notifier := &recordingNotifier{}
	monitor := newTestMonitor([]health.Server{
		{ID: 1, Name: "ghost", URL: "http://127.0.0.1:1"},
	}, notifier, &fakeClock{now: time.Unix(1000, 0)})

	results, err := monitor.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Healthy)
	assert.Zero(t, results[0].StatusCode)
	assert.Equal(t, 1, notifier.count())
}

// =============================================================================
// NOTIFICATION THROTTLING
// =============================================================================

func TestCheckAll_RepeatedFailure_ThrottledByCooldown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	notifier := &recordingNotifier{}
	monitor := newTestMonitor([]health.Server{
		{ID: 1, Name: "flaky", URL: down.URL},
	}, notifier, clock)
	ctx := context.Background()

	// First failure notifies
	_, err := monitor.CheckAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())

	// Still inside the cooldown window: silent
	clock.Advance(30 * time.Minute)
	_, err = monitor.CheckAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())

	// Window elapsed: notifies again
	clock.Advance(31 * time.Minute)
	_, err = monitor.CheckAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, notifier.count())
}

func TestCheckAll_RecoveryResetsThrottle(t *testing.T) {
	healthy := false
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		ok := healthy
		mu.Unlock()
		if ok {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	notifier := &recordingNotifier{}
	monitor := newTestMonitor([]health.Server{
		{ID: 1, Name: "recovering", URL: srv.URL},
	}, notifier, clock)
	ctx := context.Background()

	_, err := monitor.CheckAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())

	// Recover, then fail again a minute later: the recovery cleared the
	// throttle, so the new failure notifies immediately.
	mu.Lock()
	healthy = true
	mu.Unlock()
	_, err = monitor.CheckAll(ctx)
	require.NoError(t, err)

	mu.Lock()
	healthy = false
	mu.Unlock()
	clock.Advance(time.Minute)
	_, err = monitor.CheckAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, notifier.count())
}

func TestCheckAll_ThrottleIsPerServer(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	notifier := &recordingNotifier{}
	monitor := newTestMonitor([]health.Server{
		{ID: 1, Name: "a", URL: down.URL},
		{ID: 2, Name: "b", URL: down.URL},
	}, notifier, clock)

	_, err := monitor.CheckAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, notifier.count())
	assert.ElementsMatch(t, []string{"a", "b"}, notifier.calls)
}
