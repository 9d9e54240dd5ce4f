/*
monitor.go - Server health checks

PURPOSE:
  Probes a registry of HTTP servers and reports whether each one answers.
  Repeated failures of the same server do not re-notify until a cooldown
  window has elapsed; a recovery resets the window.

CONCURRENCY:
  Probes within one sweep run sequentially. The notification bookkeeping is
  guarded by a mutex so concurrent sweeps (e.g. an on-demand check racing a
  scheduled one) stay consistent.
*/
package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Server is an entry in the monitored-server registry.
type Server struct {
	ID          int64
	Name        string
	URL         string
	Description string
}

// Result is the outcome of probing one server.
type Result struct {
	Server     Server
	Healthy    bool
	StatusCode int           // 0 when the request itself failed
	Latency    time.Duration
	Error      string // empty when healthy
}

// ServerSource lists the servers to probe.
type ServerSource interface {
	ListServers(ctx context.Context) ([]Server, error)
}

// Notifier delivers a "server is down" alert.
type Notifier interface {
	Notify(ctx context.Context, server Server, reason string) error
}

// Monitor probes servers and throttles down-alerts per server.
type Monitor struct {
	source   ServerSource
	notifier Notifier
	client   *http.Client
	cooldown time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu           sync.Mutex
	lastNotified map[int64]time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClient overrides the HTTP client used for probes.
func WithClient(c *http.Client) Option {
	return func(m *Monitor) { m.client = c }
}

// WithClock overrides the time source. Tests use this to step through
// cooldown windows without sleeping.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor builds a monitor over the given registry.
func NewMonitor(source ServerSource, notifier Notifier, cooldown time.Duration, log zerolog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		source:       source,
		notifier:     notifier,
		client:       &http.Client{Timeout: 5 * time.Second},
		cooldown:     cooldown,
		now:          time.Now,
		log:          log,
		lastNotified: make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CheckAll probes every registered server and returns one result per server.
// Unhealthy servers trigger a notification unless one was already sent inside
// the cooldown window; a healthy probe clears the window so the next failure
// notifies immediately.
func (m *Monitor) CheckAll(ctx context.Context) ([]Result, error) {
	servers, err := m.source.ListServers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}

	results := make([]Result, 0, len(servers))
	for _, srv := range servers {
		res := m.probe(ctx, srv)
		if res.Healthy {
			m.clearAlert(srv.ID)
		} else {
			m.maybeNotify(ctx, srv, res.Error)
		}
		results = append(results, res)
	}
	return results, nil
}

func (m *Monitor) probe(ctx context.Context, srv Server) Result {
	res := Result{Server: srv}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		res.Error = fmt.Sprintf("invalid url: %v", err)
		return res
	}

	start := m.now()
	resp, err := m.client.Do(req)
	res.Latency = m.now().Sub(start)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode >= 400 {
		res.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return res
	}
	res.Healthy = true
	return res
}

func (m *Monitor) maybeNotify(ctx context.Context, srv Server, reason string) {
	m.mu.Lock()
	last, seen := m.lastNotified[srv.ID]
	due := !seen || m.now().Sub(last) >= m.cooldown
	if due {
		m.lastNotified[srv.ID] = m.now()
	}
	m.mu.Unlock()

	if !due {
		return
	}
	if err := m.notifier.Notify(ctx, srv, reason); err != nil {
		m.log.Error().Err(err).Str("server", srv.Name).Msg("failed to deliver down-alert")
	}
}

func (m *Monitor) clearAlert(id int64) {
	m.mu.Lock()
	delete(m.lastNotified, id)
	m.mu.Unlock()
}

// LogNotifier writes alerts to the structured log. It stands in for an
// outbound channel (mail, chat webhook) in deployments that have none.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, server Server, reason string) error {
	n.Log.Warn().
		Str("server", server.Name).
		Str("url", server.URL).
		Str("reason", reason).
		Msg("server unreachable")
	return nil
}
