package rate

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

var (
	refreshSuccessCounter = metrics.GetOrCreateCounter(`rate_refresh_total{result="success"}`)
	refreshErrorCounter   = metrics.GetOrCreateCounter(`rate_refresh_total{result="error"}`)
)

// Snapshot is a point-in-time copy of the store state, safe to hand out.
type Snapshot struct {
	Rates      []ExchangeRate `json:"rates"`
	Selected   *ExchangeRate  `json:"selected,omitempty"`
	Loading    bool           `json:"loading"`
	Error      string         `json:"error,omitempty"`
	LastUpdate *time.Time     `json:"lastUpdate,omitempty"`
}

// Store holds the freshest known rates and the operator's currency
// selection. It is the only writer of its own state; callers observe it
// through Snapshot.
type Store struct {
	feed   Feed
	logger *slog.Logger

	mu          sync.Mutex
	rates       []ExchangeRate
	selected    ExchangeRate
	hasSelected bool
	loading     bool
	err         string
	lastUpdate  time.Time
}

func NewStore(feed Feed, logger *slog.Logger) *Store {
	return &Store{feed: feed, logger: logger}
}

// Refresh pulls the feed once. On success the rate list is replaced
// wholesale and the last error cleared; on failure prior rates and the
// selection stay untouched and the error text is recorded. Loading is
// cleared on every completion. Concurrent calls are allowed; whichever
// settles last wins.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	rates, err := s.feed.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.err = err.Error()
		s.logger.ErrorContext(ctx, "Rate refresh failed", "error", err)
		refreshErrorCounter.Inc()
		return
	}

	s.rates = rates
	s.lastUpdate = time.Now()
	s.err = ""

	if s.hasSelected {
		// Re-resolve by name so the selection tracks fresh averages. A
		// currency the feed stopped reporting keeps its last quote; see
		// DESIGN.md.
		if fresh, ok := findByName(rates, s.selected.Name); ok {
			s.selected = fresh
		}
	} else if len(rates) > 0 {
		s.selected = rates[0]
		s.hasSelected = true
	}

	s.logger.InfoContext(ctx, "Rates refreshed", "count", len(rates))
	refreshSuccessCounter.Inc()
}

// Select picks the rate whose name contains the given currency code,
// case-insensitively. The feed may label a currency with a longer display
// name ("EURO" for EUR). No-op when nothing matches.
func (s *Store) Select(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToUpper(code)
	for _, r := range s.rates {
		if strings.Contains(strings.ToUpper(r.Name), needle) {
			s.selected = r
			s.hasSelected = true
			return
		}
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Rates:   append([]ExchangeRate(nil), s.rates...),
		Loading: s.loading,
		Error:   s.err,
	}
	if s.hasSelected {
		selected := s.selected
		snap.Selected = &selected
	}
	if !s.lastUpdate.IsZero() {
		lastUpdate := s.lastUpdate
		snap.LastUpdate = &lastUpdate
	}
	return snap
}

// Run refreshes once immediately, then on every tick until the context is
// cancelled. The ticker is stopped on exit.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Rate refresh loop stopped")
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func findByName(rates []ExchangeRate, name string) (ExchangeRate, bool) {
	for _, r := range rates {
		if r.Name == name {
			return r, true
		}
	}
	return ExchangeRate{}, false
}
