package station

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/npsdash/backend-go/internal/metrics"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPageCap          = 25
	DefaultMaxAttempts      = 10
	DefaultInitialHalfWidth = 0.5
	DefaultRetryDelay       = time.Second
)

type Options struct {
	// PageCap is the directory's page size; a full page means truncation.
	PageCap     int
	MaxAttempts int
	// InitialHalfWidth is the starting search half-width in degrees.
	InitialHalfWidth float64
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration
	Clock      clockwork.Clock
}

// Locator finds the nearest station to a point by adapting the size of a
// square search box until the directory returns a non-empty, untruncated page.
type Locator struct {
	directory Directory
	opts      Options
}

var _ models.StationLocator = (*Locator)(nil)

func NewLocator(directory Directory, opts Options) *Locator {
	if opts.PageCap <= 0 {
		opts.PageCap = DefaultPageCap
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.InitialHalfWidth <= 0 {
		opts.InitialHalfWidth = DefaultInitialHalfWidth
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Locator{directory: directory, opts: opts}
}

// searchState lives for exactly one lookup.
type searchState struct {
	halfWidth float64
	// upper is the last half-width that produced a truncated page; 0 if none.
	upper    float64
	attempts int
	observed int
	best     *models.Candidate
	bestDist float64
}

// observe keeps the nearest candidate seen so far; on ties the first one wins.
func (s *searchState) observe(p models.Point, candidates []models.Candidate) {
	for i := range candidates {
		d := models.PlanarDistance(p, candidates[i].Point())
		if s.best == nil || d < s.bestDist {
			c := candidates[i]
			s.best = &c
			s.bestDist = d
		}
	}
	s.observed += len(candidates)
}

// Locate resolves the nearest station to p. Undefined points are skipped
// without touching the directory. Failed lookups return a Resolution carrying
// the failure status together with a *LookupError.
func (l *Locator) Locate(ctx context.Context, p models.Point) (*models.Resolution, error) {
	if !p.Defined() {
		metrics.LookupsTotal.WithLabelValues(string(models.StatusSkipped)).Inc()
		return &models.Resolution{Status: models.StatusSkipped}, nil
	}

	state := &searchState{halfWidth: l.opts.InitialHalfWidth}
	res := &models.Resolution{}

	for state.attempts < l.opts.MaxAttempts {
		if state.attempts > 0 {
			if err := l.pause(ctx); err != nil {
				return nil, err
			}
		}
		state.attempts++
		res.Attempts = state.attempts
		res.HalfWidths = append(res.HalfWidths, state.halfWidth)

		box := models.NewBoundingBox(p, state.halfWidth)
		candidates, err := l.directory.StationsWithin(ctx, box)
		if err != nil {
			if isCanceled(err) {
				return nil, err
			}
			return l.fail(res, p, statusForError(err), err)
		}
		state.observe(p, candidates)

		n := len(candidates)
		logger := log.Debug().
			Str("point", p.String()).
			Int("attempt", state.attempts).
			Float64("half_width", state.halfWidth).
			Int("count", n)

		switch {
		case n >= l.opts.PageCap:
			logger.Msg("Station page truncated, shrinking search box")
			state.upper = state.halfWidth
			state.halfWidth /= 2
		case n > 0:
			logger.Str("station_id", state.best.ID).Msg("Resolved nearest station")
			res.Status = models.StatusResolved
			res.StationID = state.best.ID
			res.Candidate = state.best
			l.record(res)
			return res, nil
		default:
			logger.Msg("No stations in search box, growing it")
			state.halfWidth = math.Max(state.halfWidth*1.5, state.upper*0.75)
		}
	}

	if state.observed == 0 {
		return l.fail(res, p, models.StatusNotFound, ErrNotFound)
	}
	return l.fail(res, p, models.StatusTooManyAttempts, ErrTooManyAttempts)
}

func (l *Locator) fail(res *models.Resolution, p models.Point, status models.Status, err error) (*models.Resolution, error) {
	res.Status = status
	l.record(res)

	log.Warn().
		Err(err).
		Str("point", p.String()).
		Int("attempts", res.Attempts).
		Str("status", string(status)).
		Msg("Station lookup failed")

	return res, &LookupError{
		Status:   status,
		Point:    p,
		Attempts: res.Attempts,
		Err:      err,
	}
}

func (l *Locator) record(res *models.Resolution) {
	metrics.LookupsTotal.WithLabelValues(string(res.Status)).Inc()
	metrics.LookupAttempts.Observe(float64(res.Attempts))
}

func (l *Locator) pause(ctx context.Context) error {
	if l.opts.RetryDelay == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.opts.Clock.After(l.opts.RetryDelay):
		return nil
	}
}
