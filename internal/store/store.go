package store

import (
	"context"
	"errors"
	"time"

	"wasender/internal/models"

	"gorm.io/gorm"
)

var ErrTenantNotFound = errors.New("tenant not found")

// Store wraps the database with the queries the dispatch engine needs.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// Tenant returns the current tenant row, including role, tier and balance.
// Callers re-read this during a run; balances can change underneath an
// active campaign.
func (s *Store) Tenant(ctx context.Context, tenantID string) (models.Tenant, error) {
	var t models.Tenant
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, ErrTenantNotFound
	}
	return t, err
}

// DebitCredit atomically removes one credit from a non-privileged tenant.
// A single conditional UPDATE, so overlapping debits never lose a unit
// and the balance cannot go negative.
func (s *Store) DebitCredit(ctx context.Context, tenantID string) error {
	return s.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("tenant_id = ? AND role <> ? AND credits > 0", tenantID, models.RoleAdmin).
		UpdateColumn("credits", gorm.Expr("credits - 1")).Error
}

// SentToday counts successful sends for the tenant within the calendar
// day containing now (local time).
func (s *Store) SentToday(ctx context.Context, tenantID string, now time.Time) (int64, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.SentRecord{}).
		Where("tenant_id = ? AND outcome = ? AND created_at >= ? AND created_at < ?",
			tenantID, models.OutcomeSent, dayStart, dayEnd).
		Count(&count).Error
	return count, err
}

// AppendSentRecord inserts one immutable outcome row.
func (s *Store) AppendSentRecord(ctx context.Context, rec *models.SentRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

// CustomersByTenant returns all current customers of a tenant, oldest first.
func (s *Store) CustomersByTenant(ctx context.Context, tenantID string) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id").
		Find(&customers).Error
	return customers, err
}

// CustomersByAddresses returns the tenant's customers matching the given
// phone numbers. Numbers without a customer row are simply absent from
// the result.
func (s *Store) CustomersByAddresses(ctx context.Context, tenantID string, addresses []string) ([]models.Customer, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	var customers []models.Customer
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND phone IN ?", tenantID, addresses).
		Order("id").
		Find(&customers).Error
	return customers, err
}

// DueBatches lists pending scheduled batches due at or before now,
// oldest-due first, bounded by limit.
func (s *Store) DueBatches(ctx context.Context, now time.Time, limit int) ([]models.ScheduledBatch, error) {
	var batches []models.ScheduledBatch
	err := s.db.WithContext(ctx).
		Where("status = ? AND due_at <= ?", models.BatchPending, now).
		Order("due_at").
		Limit(limit).
		Find(&batches).Error
	return batches, err
}

// ClaimBatch moves a batch from pending to claimed. Returns false when
// the batch was already claimed by a concurrent promotion pass.
func (s *Store) ClaimBatch(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.ScheduledBatch{}).
		Where("id = ? AND status = ?", id, models.BatchPending).
		Update("status", models.BatchClaimed)
	return res.RowsAffected == 1, res.Error
}

// FinishBatch sets the terminal status of a claimed batch.
func (s *Store) FinishBatch(ctx context.Context, id uint, status string) error {
	return s.db.WithContext(ctx).
		Model(&models.ScheduledBatch{}).
		Where("id = ?", id).
		Update("status", status).Error
}
