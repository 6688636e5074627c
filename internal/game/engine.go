// apps/go-server/internal/game/engine.go
//
// Core engine for a single number-guessing session.
// Responsibilities:
//   - Create sessions with a bounded range [1, max] (default 100, clamped to >= 1).
//   - Validate and evaluate guesses (low/high/correct).
//   - Track attempts and the active → won transition.
//   - Reset a session with a fresh secret and optionally a new bound.
//
// Notes:
//   - Secrets come from a pluggable Source so tests can fix them.
//   - Out-of-range guesses are rejected before anything else, in either state,
//     and never count as an attempt.
package game

import "math"

// Option configures New and Reset.
type Option func(*settings)

type settings struct {
	max    int
	hasMax bool
	src    Source
}

// WithMax sets the inclusive upper bound. Values below 1 become 1.
func WithMax(max int) Option {
	return func(s *settings) {
		s.max = clamp(max, 1, math.MaxInt)
		s.hasMax = true
	}
}

// WithSource sets the Source used to draw secrets.
func WithSource(src Source) Option {
	return func(s *settings) { s.src = src }
}

// New constructs a session and draws its secret.
// Without WithMax the bound is DefaultMax; without WithSource a
// DefaultSource is used.
func New(opts ...Option) *Session {
	cfg := apply(opts)
	g := &Session{max: DefaultMax, src: cfg.src}
	if cfg.hasMax {
		g.max = cfg.max
	}
	if g.src == nil {
		g.src = DefaultSource()
	}
	g.secret = g.draw()
	return g
}

// Reset starts a fresh game on the same session.
// WithMax replaces the bound (same clamping as New); otherwise the current
// bound is kept. WithSource replaces the source before the draw.
func (g *Session) Reset(opts ...Option) {
	cfg := apply(opts)
	if cfg.hasMax {
		g.max = cfg.max
	}
	if cfg.src != nil {
		g.src = cfg.src
	}
	g.secret = g.draw()
	g.attempts = 0
	g.finished = false
}

// Guess evaluates value against the secret.
//
// Order of checks:
//   - value outside [1, max] → *OutOfRangeError, state untouched.
//   - game already won → {correct, attempts} without counting an attempt.
//   - otherwise attempts += 1 (saturating), then low/high/correct.
func (g *Session) Guess(value int) (Outcome, error) {
	if value < 1 || value > g.max {
		return Outcome{}, &OutOfRangeError{Value: value, Max: g.max}
	}
	if g.finished {
		return Outcome{Result: ResultCorrect, Attempts: g.attempts}, nil
	}

	if g.attempts < math.MaxInt {
		g.attempts++
	}

	var res Result
	switch {
	case value < g.secret:
		res = ResultLow
	case value > g.secret:
		res = ResultHigh
	default:
		res = ResultCorrect
		g.finished = true
	}
	return Outcome{Result: res, Attempts: g.attempts}, nil
}

// Attempts returns the number of in-range guesses since the last reset.
func (g *Session) Attempts() int { return g.attempts }

// Max returns the inclusive upper bound.
func (g *Session) Max() int { return g.max }

// Finished reports whether the secret has been guessed.
func (g *Session) Finished() bool { return g.finished }

// State reports the lifecycle state.
func (g *Session) State() State {
	if g.finished {
		return StateWon
	}
	return StateActive
}

// draw asks the source for a secret and pins it into [1, max] in case a
// Source implementation misbehaves.
func (g *Session) draw() int {
	return clamp(g.src.Draw(g.max), 1, g.max)
}

func apply(opts []Option) settings {
	var cfg settings
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
