package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poscalc-service/internal/rate"
)

type fakeFeed struct {
	rates []rate.ExchangeRate
	err   error
	calls int
}

func (f *fakeFeed) Fetch(ctx context.Context) ([]rate.ExchangeRate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func usdEuroRates() []rate.ExchangeRate {
	return []rate.ExchangeRate{
		{Source: rate.SourceOfficial, Name: "USD", Average: 139.4016},
		{Source: rate.SourceOfficial, Name: "EURO", Average: 162.5325},
	}
}

func TestStore_RefreshSuccess(t *testing.T) {
	feed := &fakeFeed{rates: usdEuroRates()}
	store := rate.NewStore(feed, testLogger())

	store.Refresh(context.Background())

	snap := store.Snapshot()
	assert.Equal(t, usdEuroRates(), snap.Rates)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.NotNil(t, snap.LastUpdate)

	// Nothing was selected, so the first listed rate becomes selected.
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "USD", snap.Selected.Name)
}

func TestStore_RefreshUpdatesLastUpdateOnIdenticalRates(t *testing.T) {
	feed := &fakeFeed{rates: usdEuroRates()}
	store := rate.NewStore(feed, testLogger())

	store.Refresh(context.Background())
	first := store.Snapshot().LastUpdate
	require.NotNil(t, first)

	time.Sleep(5 * time.Millisecond)
	store.Refresh(context.Background())
	second := store.Snapshot().LastUpdate
	require.NotNil(t, second)

	assert.True(t, second.After(*first))
}

func TestStore_RefreshFailureKeepsPriorState(t *testing.T) {
	feed := &fakeFeed{rates: usdEuroRates()}
	store := rate.NewStore(feed, testLogger())
	store.Refresh(context.Background())

	feed.err = errors.New("connection refused")
	store.Refresh(context.Background())

	snap := store.Snapshot()
	assert.Equal(t, usdEuroRates(), snap.Rates)
	assert.Contains(t, snap.Error, "connection refused")
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "USD", snap.Selected.Name)
	assert.False(t, snap.Loading)
}

func TestStore_RefreshSuccessClearsError(t *testing.T) {
	feed := &fakeFeed{err: errors.New("connection refused")}
	store := rate.NewStore(feed, testLogger())
	store.Refresh(context.Background())
	require.NotEmpty(t, store.Snapshot().Error)

	feed.err = nil
	feed.rates = usdEuroRates()
	store.Refresh(context.Background())

	assert.Empty(t, store.Snapshot().Error)
}

func TestStore_Select(t *testing.T) {
	feed := &fakeFeed{rates: usdEuroRates()}
	store := rate.NewStore(feed, testLogger())
	store.Refresh(context.Background())

	// "EUR" matches the feed's longer "EURO" label, case-insensitively.
	store.Select("eur")
	selected := store.Snapshot().Selected
	require.NotNil(t, selected)
	assert.Equal(t, "EURO", selected.Name)
	assert.Equal(t, 162.5325, selected.Average)

	// Unknown codes are a no-op.
	store.Select("GBP")
	selected = store.Snapshot().Selected
	require.NotNil(t, selected)
	assert.Equal(t, "EURO", selected.Name)
}

func TestStore_RefreshTracksSelectedAverage(t *testing.T) {
	feed := &fakeFeed{rates: usdEuroRates()}
	store := rate.NewStore(feed, testLogger())
	store.Refresh(context.Background())

	feed.rates = []rate.ExchangeRate{
		{Source: rate.SourceOfficial, Name: "USD", Average: 141.0},
		{Source: rate.SourceOfficial, Name: "EURO", Average: 163.0},
	}
	store.Refresh(context.Background())

	selected := store.Snapshot().Selected
	require.NotNil(t, selected)
	assert.Equal(t, "USD", selected.Name)
	assert.Equal(t, 141.0, selected.Average)
}

func TestStore_SelectionSurvivesDroppedCurrency(t *testing.T) {
	feed := &fakeFeed{rates: usdEuroRates()}
	store := rate.NewStore(feed, testLogger())
	store.Refresh(context.Background())
	store.Select("EUR")

	feed.rates = []rate.ExchangeRate{
		{Source: rate.SourceOfficial, Name: "USD", Average: 139.4016},
	}
	store.Refresh(context.Background())

	// The stale selection is kept, not cleared.
	selected := store.Snapshot().Selected
	require.NotNil(t, selected)
	assert.Equal(t, "EURO", selected.Name)
	assert.Equal(t, 162.5325, selected.Average)
}

func TestStore_RunRefreshesAndStops(t *testing.T) {
	feed := &fakeFeed{rates: usdEuroRates()}
	store := rate.NewStore(feed, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return store.Snapshot().LastUpdate != nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh loop did not stop after cancellation")
	}
}
