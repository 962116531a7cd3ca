// Package dispatch is the outbound engine core: it accepts an approved
// recipient batch, paces delivery, meters it against the tenant's
// budget, personalizes content per recipient, records outcomes and
// publishes live progress. At most one campaign runs per tenant.
package dispatch

import (
	"context"
	"sync"
	"time"

	"wasender/internal/metrics"
	"wasender/internal/models"
	"wasender/internal/personalize"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	finishCompleted = "completed"
	finishCancelled = "cancelled"
	finishQuota     = "quota_exhausted"
)

// Manager owns the per-tenant progress map and drives one sequential
// send loop per active campaign. Campaigns for different tenants are
// fully concurrent; within a campaign, recipients are processed strictly
// in submission order.
type Manager struct {
	mu   sync.Mutex
	runs map[string]*progress

	transport Transport
	meter     Meter
	recorder  Recorder
	pacer     Pacer
	clock     Clock
	log       *zap.SugaredLogger

	// ctx spans the manager's lifetime; Shutdown cancels it, which wakes
	// any run parked in Sleep and ends it as a cancellation.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(transport Transport, meter Meter, recorder Recorder, pacer Pacer, clock Clock, log *zap.SugaredLogger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		runs:      make(map[string]*progress),
		transport: transport,
		meter:     meter,
		recorder:  recorder,
		pacer:     pacer,
		clock:     clock,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Shutdown ends every run. Runs parked on a delay wake immediately;
// counters and records written so far are kept. Idempotent.
func (m *Manager) Shutdown() {
	m.cancel()
}

// Submit validates the batch, installs a fresh progress record and
// starts the asynchronous run. It returns before any message is sent.
func (m *Manager) Submit(ctx context.Context, tenantID string, recipients []Recipient, tmpl Template) error {
	if len(recipients) == 0 {
		return ErrEmptyRecipients
	}
	if err := m.meter.CheckDailyLimit(ctx, tenantID, len(recipients)); err != nil {
		return err
	}
	if err := m.meter.CheckBudget(ctx, tenantID, len(recipients)); err != nil {
		return err
	}

	m.mu.Lock()
	if p, ok := m.runs[tenantID]; ok && p.isActive() {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	p := &progress{active: true, total: len(recipients)}
	m.runs[tenantID] = p
	m.mu.Unlock()

	runID := uuid.NewString()
	metrics.CampaignsStarted.Inc()
	m.log.Infow("campaign_accepted",
		"run_id", runID,
		"tenant", tenantID,
		"recipients", len(recipients),
	)

	go m.run(runID, tenantID, recipients, tmpl, p)
	return nil
}

// GetProgress returns a point-in-time snapshot. An unknown tenant yields
// an all-zero inactive snapshot.
func (m *Manager) GetProgress(tenantID string) Snapshot {
	m.mu.Lock()
	p, ok := m.runs[tenantID]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}
	}
	return p.snapshot()
}

// Cancel flips the active flag and returns immediately. The run observes
// it at the top of its next iteration; a send already in flight always
// completes and is recorded. Idempotent even when nothing is running.
func (m *Manager) Cancel(tenantID string) {
	m.mu.Lock()
	p, ok := m.runs[tenantID]
	m.mu.Unlock()
	if ok {
		p.deactivate()
	}
}

// run is the per-campaign loop. It is the single writer of the progress
// counters. Cancellation is cooperative, checked once per iteration.
func (m *Manager) run(runID, tenantID string, recipients []Recipient, tmpl Template, p *progress) {
	ctx := m.ctx
	reason := finishCancelled

	i := 0
	for i < len(recipients) {
		if !p.isActive() || ctx.Err() != nil {
			break
		}

		ok, err := m.meter.CanSend(ctx, tenantID)
		if err != nil {
			m.log.Warnw("quota_check_failed", "run_id", runID, "tenant", tenantID, "error", err)
		} else if !ok {
			reason = finishQuota
			break
		}

		if pause := m.pacer.ShouldPause(m.clock.Now()); pause > 0 {
			// Quiet hours: hold without advancing the cursor, then
			// re-evaluate the window. The same recipient is retried once
			// it ends.
			m.log.Debugw("quiet_hours_pause", "run_id", runID, "tenant", tenantID, "pause", pause.String())
			m.clock.Sleep(ctx, pause)
			continue
		}

		m.clock.Sleep(ctx, m.pacer.NextDelay())
		if ctx.Err() != nil {
			break
		}

		rcpt := recipients[i]
		content := personalize.Render(tmpl.Body, rcpt.Name, rcpt.Attrs)
		if tmpl.Variation {
			content = personalize.Vary(content)
		}

		start := time.Now()
		err = m.transport.Send(ctx, tenantID, rcpt.Address, content, tmpl.MediaURL)
		metrics.SendDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			// A single failed send never stops the run.
			metrics.MessagesFailed.Inc()
			m.log.Infow("send_failed", "run_id", runID, "tenant", tenantID, "address", rcpt.Address, "error", err)
			m.recorder.Record(ctx, tenantID, rcpt.Address, content, models.OutcomeFailed)
			p.advance(false)
		} else {
			metrics.MessagesSent.Inc()
			m.recorder.Record(ctx, tenantID, rcpt.Address, content, models.OutcomeSent)
			p.advance(true)
			if err := m.meter.Debit(ctx, tenantID); err != nil {
				m.log.Warnw("credit_debit_failed", "run_id", runID, "tenant", tenantID, "error", err)
			}
		}
		i++
	}

	if i == len(recipients) {
		reason = finishCompleted
	}
	p.deactivate()

	metrics.CampaignsFinished.WithLabelValues(reason).Inc()
	snap := p.snapshot()
	m.log.Infow("campaign_finished",
		"run_id", runID,
		"tenant", tenantID,
		"reason", reason,
		"sent", snap.Success,
		"failed", snap.Errors,
		"total", snap.Total,
	)
}
