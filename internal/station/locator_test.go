package station

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDirectory replays one response per call; the last response repeats.
type mockDirectory struct {
	mu        sync.Mutex
	responses []func(box models.BoundingBox) ([]models.Candidate, error)
	boxes     []models.BoundingBox
}

func (m *mockDirectory) StationsWithin(ctx context.Context, box models.BoundingBox) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.boxes)
	m.boxes = append(m.boxes, box)
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i](box)
}

func (m *mockDirectory) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.boxes)
}

func returns(candidates []models.Candidate, err error) func(models.BoundingBox) ([]models.Candidate, error) {
	return func(models.BoundingBox) ([]models.Candidate, error) {
		return candidates, err
	}
}

// candidatesAround builds n candidates offset from p by increasing distances.
func candidatesAround(p models.Point, n int) []models.Candidate {
	out := make([]models.Candidate, n)
	for i := range out {
		offset := 0.01 * float64(i+1)
		out[i] = models.Candidate{
			ID:        "GHCND:C" + string(rune('A'+i%26)) + string(rune('A'+i/26)),
			Latitude:  p.Latitude + offset,
			Longitude: p.Longitude - offset,
			Source:    models.SourceCDO,
		}
	}
	return out
}

func newTestLocator(dir Directory) *Locator {
	return NewLocator(dir, Options{PageCap: 25, MaxAttempts: 10, RetryDelay: 0})
}

var rainier = models.Point{Latitude: 46.8, Longitude: -121.7}

func TestLocateResolvesOnFirstAttempt(t *testing.T) {
	candidates := []models.Candidate{
		{ID: "GHCND:FAR", Latitude: 46.9, Longitude: -121.4},
		{ID: "GHCND:NEAR", Latitude: 46.79, Longitude: -121.71},
		{ID: "GHCND:MID", Latitude: 46.6, Longitude: -121.9},
	}
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(candidates, nil),
	}}

	clock := clockwork.NewFakeClock()
	l := NewLocator(dir, Options{PageCap: 25, MaxAttempts: 10, RetryDelay: time.Hour, Clock: clock})

	res, err := l.Locate(context.Background(), rainier)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, res.Status)
	assert.Equal(t, "GHCND:NEAR", res.StationID)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []float64{0.5}, res.HalfWidths)

	require.Len(t, dir.boxes, 1)
	assert.Equal(t, "46.3,-122.2,47.3,-121.2", dir.boxes[0].Extent())
}

func TestLocateShrinksOnTruncatedPages(t *testing.T) {
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(candidatesAround(rainier, 30), nil),
		returns(candidatesAround(rainier, 30), nil),
		returns(candidatesAround(rainier, 5), nil),
	}}

	res, err := newTestLocator(dir).Locate(context.Background(), rainier)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []float64{0.5, 0.25, 0.125}, res.HalfWidths)
}

func TestLocatePicksNearestAcrossAllAttempts(t *testing.T) {
	// The closest station only appears on a truncated page; the final
	// page holds a farther one.
	closest := models.Candidate{ID: "GHCND:CLOSEST", Latitude: 46.8001, Longitude: -121.7001}
	full := append(candidatesAround(rainier, 24), closest)
	farther := []models.Candidate{{ID: "GHCND:FARTHER", Latitude: 46.9, Longitude: -121.6}}

	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(full, nil),
		returns(farther, nil),
	}}

	res, err := newTestLocator(dir).Locate(context.Background(), rainier)
	require.NoError(t, err)
	assert.Equal(t, "GHCND:CLOSEST", res.StationID)
	assert.Equal(t, 2, res.Attempts)
}

func TestLocateTiesGoToFirstSeen(t *testing.T) {
	p := models.Point{Latitude: 46.5, Longitude: -121.5}
	a := models.Candidate{ID: "GHCND:A", Latitude: 46.75, Longitude: -121.5}
	b := models.Candidate{ID: "GHCND:B", Latitude: 46.25, Longitude: -121.5}
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns([]models.Candidate{a, b}, nil),
	}}

	res, err := newTestLocator(dir).Locate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "GHCND:A", res.StationID)
}

func TestLocateGrowthUsesTruncationWitness(t *testing.T) {
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(candidatesAround(rainier, 25), nil),
		returns(nil, nil),
		returns(candidatesAround(rainier, 2), nil),
	}}

	res, err := newTestLocator(dir).Locate(context.Background(), rainier)
	require.NoError(t, err)
	// 0.5 truncated -> 0.25; 0.25 empty -> max(0.375, 0.375)
	assert.Equal(t, []float64{0.5, 0.25, 0.375}, res.HalfWidths)
}

func TestLocateGrowthWithoutWitness(t *testing.T) {
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(nil, nil),
		returns(nil, nil),
		returns(candidatesAround(rainier, 1), nil),
	}}

	res, err := newTestLocator(dir).Locate(context.Background(), rainier)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.75, 1.125}, res.HalfWidths)
}

func TestLocateAlwaysEmptyIsNotFound(t *testing.T) {
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(nil, nil),
	}}

	res, err := newTestLocator(dir).Locate(context.Background(), rainier)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.StatusNotFound, res.Status)
	assert.Equal(t, 10, res.Attempts)
	assert.Equal(t, 10, dir.calls())
	assert.Empty(t, res.StationID)

	status, ok := StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, models.StatusNotFound, status)
	assert.True(t, status.Retryable())
}

func TestLocateAlwaysFullIsTooManyAttempts(t *testing.T) {
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(candidatesAround(rainier, 25), nil),
	}}

	res, err := newTestLocator(dir).Locate(context.Background(), rainier)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, models.StatusTooManyAttempts, res.Status)
	assert.Equal(t, 10, res.Attempts)
	assert.Equal(t, 10, dir.calls())
	assert.InDelta(t, 0.5/512, res.HalfWidths[9], 1e-12)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, 10, lookupErr.Attempts)
}

func TestLocateSkipsUndefinedPoint(t *testing.T) {
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(nil, errors.New("directory must not be called")),
	}}

	points := []models.Point{
		models.UndefinedPoint(),
		{Latitude: 46.8, Longitude: models.UndefinedPoint().Longitude},
	}
	for _, p := range points {
		res, err := newTestLocator(dir).Locate(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSkipped, res.Status)
		assert.Zero(t, res.Attempts)
	}
	assert.Zero(t, dir.calls())
}

func TestLocateAbortsOnDirectoryErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus models.Status
	}{
		{
			name:       "timeout",
			err:        cdo.NewAPIError(cdo.KindTimeout, "/stations", "request failed", context.DeadlineExceeded),
			wantStatus: models.StatusTimeout,
		},
		{
			name:       "invalid response",
			err:        cdo.NewAPIError(cdo.KindInvalidResponse, "/stations", "response was not valid JSON, raw text: <html>", nil),
			wantStatus: models.StatusInvalidResponse,
		},
		{
			name:       "service unavailable",
			err:        cdo.NewAPIError(cdo.KindUnavailable, "/stations", "unexpected status 503", nil),
			wantStatus: models.StatusUnavailable,
		},
		{
			name:       "bare deadline",
			err:        context.DeadlineExceeded,
			wantStatus: models.StatusTimeout,
		},
		{
			name:       "unclassified error",
			err:        errors.New("connection reset"),
			wantStatus: models.StatusUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
				returns(candidatesAround(rainier, 25), nil),
				returns(nil, tt.err),
			}}

			res, err := newTestLocator(dir).Locate(context.Background(), rainier)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, 2, res.Attempts)
			assert.Equal(t, 2, dir.calls(), "no further attempts after an error")

			status, ok := StatusOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestLocateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		func(models.BoundingBox) ([]models.Candidate, error) {
			cancel()
			return nil, context.Canceled
		},
	}}

	res, err := newTestLocator(dir).Locate(ctx, rainier)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := StatusOf(err)
	assert.False(t, ok)
}

func TestLocateWaitsBetweenAttempts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(nil, nil),
		returns(candidatesAround(rainier, 1), nil),
	}}
	l := NewLocator(dir, Options{PageCap: 25, MaxAttempts: 10, RetryDelay: time.Second, Clock: clock})

	type result struct {
		res *models.Resolution
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := l.Locate(context.Background(), rainier)
		done <- result{res, err}
	}()

	// First attempt runs immediately; the second waits on the clock.
	clock.BlockUntil(1)
	assert.Equal(t, 1, dir.calls())

	clock.Advance(999 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("lookup finished before the retry delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 1, dir.calls())

	clock.Advance(time.Millisecond)
	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, models.StatusResolved, r.res.Status)
		assert.Equal(t, 2, r.res.Attempts)
	case <-time.After(time.Second):
		t.Fatal("lookup did not finish after the retry delay")
	}
}

func TestLocateCanceledDuringPause(t *testing.T) {
	clock := clockwork.NewFakeClock()
	dir := &mockDirectory{responses: []func(models.BoundingBox) ([]models.Candidate, error){
		returns(nil, nil),
	}}
	l := NewLocator(dir, Options{RetryDelay: time.Minute, Clock: clock})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := l.Locate(ctx, rainier)
		done <- err
	}()

	clock.BlockUntil(1)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("lookup ignored cancellation")
	}
	assert.Equal(t, 1, dir.calls())
}

func TestNewLocatorDefaults(t *testing.T) {
	l := NewLocator(&mockDirectory{}, Options{RetryDelay: -time.Second})
	assert.Equal(t, DefaultPageCap, l.opts.PageCap)
	assert.Equal(t, DefaultMaxAttempts, l.opts.MaxAttempts)
	assert.Equal(t, DefaultInitialHalfWidth, l.opts.InitialHalfWidth)
	assert.Zero(t, l.opts.RetryDelay)
	assert.NotNil(t, l.opts.Clock)
}
