// Package record persists one terminal outcome row per attempted
// recipient.
package record

import (
	"context"

	"wasender/internal/metrics"
	"wasender/internal/models"
	"wasender/internal/store"

	"go.uber.org/zap"
)

type Recorder struct {
	store *store.Store
	log   *zap.SugaredLogger
}

func NewRecorder(st *store.Store, log *zap.SugaredLogger) *Recorder {
	return &Recorder{store: st, log: log}
}

// Record appends one sent/failed row. It never fails the caller: a
// storage hiccup must not abort an in-flight campaign, so write errors
// are counted, logged and swallowed.
func (r *Recorder) Record(ctx context.Context, tenantID, address, content, outcome string) {
	rec := &models.SentRecord{
		TenantID: tenantID,
		Phone:    address,
		Content:  content,
		Outcome:  outcome,
	}
	if err := r.store.AppendSentRecord(ctx, rec); err != nil {
		metrics.RecordingErrors.Inc()
		r.log.Errorw("sent_record_write_failed",
			"tenant", tenantID,
			"address", address,
			"outcome", outcome,
			"error", err,
		)
	}
}
