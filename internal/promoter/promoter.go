// Package promoter turns due scheduled batches into active campaigns.
// It is driven by an external timer and must tolerate overlapping
// invocations: every batch is claimed before it is processed.
package promoter

import (
	"context"
	"encoding/json"
	"time"

	"wasender/internal/dispatch"
	"wasender/internal/metrics"
	"wasender/internal/models"
	"wasender/internal/store"

	"go.uber.org/zap"
)

// Submitter is the Job Manager surface the promoter uses. A promoted
// batch goes through exactly the same admission path as an interactive
// submission.
type Submitter interface {
	Submit(ctx context.Context, tenantID string, recipients []dispatch.Recipient, tmpl dispatch.Template) error
}

type Promoter struct {
	store     *store.Store
	jobs      Submitter
	batchSize int
	variation bool
	log       *zap.SugaredLogger
}

func New(st *store.Store, jobs Submitter, batchSize int, variation bool, log *zap.SugaredLogger) *Promoter {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Promoter{store: st, jobs: jobs, batchSize: batchSize, variation: variation, log: log}
}

// PromoteDue claims and hands off due batches, oldest-due first, bounded
// per invocation. Returns the number of batches processed. A batch that
// fails admission (e.g. a campaign already running for its tenant) is
// marked failed and not retried within this invocation.
func (p *Promoter) PromoteDue(ctx context.Context, now time.Time) int {
	batches, err := p.store.DueBatches(ctx, now, p.batchSize)
	if err != nil {
		p.log.Errorw("due_batch_query_failed", "error", err)
		return 0
	}

	processed := 0
	for _, b := range batches {
		claimed, err := p.store.ClaimBatch(ctx, b.ID)
		if err != nil {
			p.log.Errorw("batch_claim_failed", "batch_id", b.ID, "error", err)
			continue
		}
		if !claimed {
			// Lost the claim race to an overlapping invocation.
			continue
		}
		processed++

		status := models.BatchCompleted
		if err := p.promote(ctx, b); err != nil {
			status = models.BatchFailed
			p.log.Infow("batch_promotion_failed", "batch_id", b.ID, "tenant", b.TenantID, "error", err)
		} else {
			p.log.Infow("batch_promoted", "batch_id", b.ID, "tenant", b.TenantID)
		}

		metrics.BatchesPromoted.WithLabelValues(status).Inc()
		if err := p.store.FinishBatch(ctx, b.ID, status); err != nil {
			p.log.Errorw("batch_finish_failed", "batch_id", b.ID, "status", status, "error", err)
		}
	}
	return processed
}

// promote resolves the batch's recipient selector against current
// persistence state and submits the campaign. Completed means "accepted
// for dispatch", not "finished sending".
func (p *Promoter) promote(ctx context.Context, b models.ScheduledBatch) error {
	recipients, err := p.resolve(ctx, b)
	if err != nil {
		return err
	}
	tmpl := dispatch.Template{
		Body:      b.Template,
		MediaURL:  b.MediaURL,
		Variation: p.variation,
	}
	return p.jobs.Submit(ctx, b.TenantID, recipients, tmpl)
}

func (p *Promoter) resolve(ctx context.Context, b models.ScheduledBatch) ([]dispatch.Recipient, error) {
	var customers []models.Customer
	var err error

	switch b.Selector {
	case models.SelectorAll:
		customers, err = p.store.CustomersByTenant(ctx, b.TenantID)
	default:
		var addresses []string
		if jsonErr := json.Unmarshal([]byte(b.Addresses), &addresses); jsonErr != nil {
			return nil, jsonErr
		}
		// Materialized against current rows, so customers deleted since
		// scheduling drop out naturally.
		customers, err = p.store.CustomersByAddresses(ctx, b.TenantID, addresses)
	}
	if err != nil {
		return nil, err
	}

	recipients := make([]dispatch.Recipient, 0, len(customers))
	for _, c := range customers {
		attrs := map[string]string{}
		if c.Attributes != "" {
			if err := json.Unmarshal([]byte(c.Attributes), &attrs); err != nil {
				attrs = map[string]string{}
			}
		}
		recipients = append(recipients, dispatch.Recipient{
			Address: c.Phone,
			Name:    c.Name,
			Attrs:   attrs,
		})
	}
	return recipients, nil
}
