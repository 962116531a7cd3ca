// Package pacing spaces sends out over time. Randomized delays keep the
// dispatch from looking like a bot to the transport's abuse heuristics,
// and an optional quiet-hours window holds sends overnight.
package pacing

import (
	"fmt"
	"math/rand"
	"time"
)

type Config struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	// Quiet-hours window as "HH:MM" local time. The window may wrap past
	// midnight (start > end). Equal start and end disables it.
	QuietStart string
	QuietEnd   string

	// How long one quiet-hours pause lasts before the window is
	// re-evaluated.
	PauseFor time.Duration
}

type Pacer struct {
	minDelay time.Duration
	maxDelay time.Duration

	quietStart int // minutes of day
	quietEnd   int
	pauseFor   time.Duration
}

func New(cfg Config) (*Pacer, error) {
	if cfg.MinDelay < 0 || cfg.MaxDelay < cfg.MinDelay {
		return nil, fmt.Errorf("invalid delay interval %v-%v", cfg.MinDelay, cfg.MaxDelay)
	}
	start, err := parseClock(cfg.QuietStart)
	if err != nil {
		return nil, fmt.Errorf("quiet start: %w", err)
	}
	end, err := parseClock(cfg.QuietEnd)
	if err != nil {
		return nil, fmt.Errorf("quiet end: %w", err)
	}
	return &Pacer{
		minDelay:   cfg.MinDelay,
		maxDelay:   cfg.MaxDelay,
		quietStart: start,
		quietEnd:   end,
		pauseFor:   cfg.PauseFor,
	}, nil
}

// NextDelay returns a delay drawn uniformly from the configured closed
// interval.
func (p *Pacer) NextDelay() time.Duration {
	span := int64(p.maxDelay - p.minDelay)
	if span <= 0 {
		return p.minDelay
	}
	return p.minDelay + time.Duration(rand.Int63n(span+1))
}

// ShouldPause returns the pause duration when now falls inside the
// quiet-hours window, zero otherwise. Callers must re-evaluate after
// waking; one pause does not mean the window has ended.
func (p *Pacer) ShouldPause(now time.Time) time.Duration {
	if p.quietStart == p.quietEnd {
		return 0
	}
	m := now.Hour()*60 + now.Minute()

	var inside bool
	if p.quietStart < p.quietEnd {
		inside = m >= p.quietStart && m < p.quietEnd
	} else {
		// Window wraps past midnight, e.g. 23:00-08:30.
		inside = m >= p.quietStart || m < p.quietEnd
	}
	if inside {
		return p.pauseFor
	}
	return 0
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
