// Package quota meters sends against per-tenant credit balances and
// tier-derived daily ceilings. Privileged tenants bypass every check.
package quota

import (
	"context"
	"errors"
	"time"

	"wasender/internal/models"
	"wasender/internal/store"
)

var (
	ErrInsufficient       = errors.New("insufficient credit balance")
	ErrDailyLimitExceeded = errors.New("daily send limit exceeded")
)

// Daily ceilings per package tier.
var tierLimits = map[string]int64{
	models.TierBasic:    300,
	models.TierStandard: 1000,
	models.TierPremium:  5000,
}

type Meter struct {
	store *store.Store
}

func NewMeter(st *store.Store) *Meter {
	return &Meter{store: st}
}

// CanSend reports whether the tenant may send one more message right
// now. It re-reads role and balance from storage on every call so that
// balance changes made elsewhere take effect mid-campaign.
func (m *Meter) CanSend(ctx context.Context, tenantID string) (bool, error) {
	t, err := m.store.Tenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	if t.Role == models.RoleAdmin {
		return true, nil
	}
	return t.Credits > 0, nil
}

// Debit removes one credit after a successful send. No-op for privileged
// tenants; atomic per tenant (see store.DebitCredit).
func (m *Meter) Debit(ctx context.Context, tenantID string) error {
	return m.store.DebitCredit(ctx, tenantID)
}

// CheckBudget is the admission-time balance check: the whole submission
// is rejected when the remaining balance cannot cover it.
func (m *Meter) CheckBudget(ctx context.Context, tenantID string, requested int) error {
	t, err := m.store.Tenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if t.Role == models.RoleAdmin {
		return nil
	}
	if t.Credits < int64(requested) {
		return ErrInsufficient
	}
	return nil
}

// CheckDailyLimit rejects a submission up front when already-sent-today
// plus the requested count would exceed the tenant's tier ceiling.
// Independent of the per-message balance check.
func (m *Meter) CheckDailyLimit(ctx context.Context, tenantID string, requested int) error {
	t, err := m.store.Tenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if t.Role == models.RoleAdmin {
		return nil
	}
	limit, ok := tierLimits[t.Tier]
	if !ok {
		limit = tierLimits[models.TierBasic]
	}
	sent, err := m.store.SentToday(ctx, tenantID, time.Now())
	if err != nil {
		return err
	}
	if sent+int64(requested) > limit {
		return ErrDailyLimitExceeded
	}
	return nil
}
