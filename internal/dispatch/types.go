package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrAlreadyRunning  = errors.New("a campaign is already running for this tenant")
	ErrEmptyRecipients = errors.New("recipient list is empty")
)

// Recipient is one send target within a campaign. Attrs holds named
// substitution values; keys are matched case-insensitively.
type Recipient struct {
	Address string
	Name    string
	Attrs   map[string]string
}

// Template is the raw message content of a campaign, with an optional
// media reference and a per-campaign variation toggle.
type Template struct {
	Body      string
	MediaURL  string
	Variation bool
}

// Transport is the established messaging session boundary. Send is
// synchronous: the run awaits completion before recording an outcome and
// pacing the next send.
type Transport interface {
	Send(ctx context.Context, tenantID, to, content, mediaURL string) error
}

// Meter answers and enforces the per-tenant credit/quota budget.
type Meter interface {
	CanSend(ctx context.Context, tenantID string) (bool, error)
	Debit(ctx context.Context, tenantID string) error
	CheckBudget(ctx context.Context, tenantID string, requested int) error
	CheckDailyLimit(ctx context.Context, tenantID string, requested int) error
}

// Recorder persists one terminal record per attempted recipient. It must
// never fail the run.
type Recorder interface {
	Record(ctx context.Context, tenantID, address, content, outcome string)
}

// Pacer computes the spacing between sends and the quiet-hours pause.
type Pacer interface {
	NextDelay() time.Duration
	ShouldPause(now time.Time) time.Duration
}

// Clock abstracts time so tests can run a campaign without real
// multi-minute waits. Sleep returns early when ctx is cancelled, so a
// run parked on a pacing delay or a quiet-hours pause wakes up during
// shutdown instead of holding the process.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Snapshot is the externally visible progress of a campaign.
type Snapshot struct {
	Active  bool `json:"active"`
	Current int  `json:"current"`
	Total   int  `json:"total"`
	Success int  `json:"success"`
	Errors  int  `json:"error"`
}

// progress is the live state of one campaign. Counters are advanced only
// by the owning run goroutine; active may additionally be flipped false
// by Cancel or the quota guard. Invariant: success+failure <= cursor <= total.
type progress struct {
	mu      sync.Mutex
	active  bool
	cursor  int
	total   int
	success int
	failure int
}

func (p *progress) isActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *progress) deactivate() {
	p.mu.Lock()
	p.active = false
	p.mu.Unlock()
}

func (p *progress) advance(sent bool) {
	p.mu.Lock()
	p.cursor++
	if sent {
		p.success++
	} else {
		p.failure++
	}
	p.mu.Unlock()
}

func (p *progress) snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Active:  p.active,
		Current: p.cursor,
		Total:   p.total,
		Success: p.success,
		Errors:  p.failure,
	}
}
