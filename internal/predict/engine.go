package predict

import (
	"errors"
	"time"

	"github.com/natalnetwork/iss-horizon/internal/astro"
	"github.com/natalnetwork/iss-horizon/internal/ephem"
	"github.com/natalnetwork/iss-horizon/internal/logging"
)

// ErrInvalidHours is returned for non-positive look-ahead requests.
var ErrInvalidHours = errors.New("hours must be positive")

// Engine runs the full prediction pipeline: sample, evaluate, build, rate.
// One Engine may serve many invocations; each invocation owns its sample
// buffer exclusively, so no synchronization is needed.
type Engine struct {
	provider ephem.Provider
	cons     Constraints
	workers  int
	logger   *logging.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets the sampling-stage concurrency.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine for one ephemeris provider and one set of
// constraints. Constraint validation happens per run, not here, so a caller
// can report configuration mistakes next to the run that failed.
func NewEngine(p ephem.Provider, c Constraints, opts ...EngineOption) *Engine {
	e := &Engine{
		provider: p,
		cons:     c,
		workers:  DefaultSamplerWorkers,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WindowsBetween predicts visibility windows over [from, to) UTC.
// Windows come back ordered by start and pairwise non-overlapping. An empty
// horizon or a horizon with no qualifying passes is a valid empty result.
func (e *Engine) WindowsBetween(obs astro.Observer, from, to time.Time) ([]Window, error) {
	if err := e.cons.Validate(); err != nil {
		return nil, err
	}

	h := Horizon{From: from.UTC(), To: to.UTC()}
	samples, err := SampleHorizon(obs, e.provider, h, e.cons.SampleStep, e.workers)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("sampled %d instants over %v..%v", len(samples), h.From, h.To)

	windows, err := BuildWindows(samples, e.cons, obs, e.provider, h)
	if err != nil {
		return nil, err
	}
	e.logger.Info("found %d visibility windows for %s", len(windows), e.provider.Name())

	return windows, nil
}

// WindowsNextHours predicts windows from now for the given number of hours.
func (e *Engine) WindowsNextHours(obs astro.Observer, hours int) ([]Window, error) {
	if hours <= 0 {
		return nil, ErrInvalidHours
	}
	now := time.Now().UTC()
	return e.WindowsBetween(obs, now, now.Add(time.Duration(hours)*time.Hour))
}

// Constraints returns the engine's configured constraints.
func (e *Engine) Constraints() Constraints {
	return e.cons
}
