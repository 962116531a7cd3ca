package store

import (
	"context"
	"testing"
	"time"

	"wasender/internal/database"
	"wasender/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // keep the in-memory database on one connection
	require.NoError(t, database.Migrate(db))
	return New(db)
}

func TestTenantLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.db.Create(&models.Tenant{TenantID: "t1", Role: models.RoleUser, Credits: 10}).Error)

	tenant, err := s.Tenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), tenant.Credits)

	_, err = s.Tenant(ctx, "missing")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestDebitCredit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.db.Create(&models.Tenant{TenantID: "t1", Role: models.RoleUser, Credits: 2}).Error)
	require.NoError(t, s.db.Create(&models.Tenant{TenantID: "adm", Role: models.RoleAdmin, Credits: 5}).Error)

	require.NoError(t, s.DebitCredit(ctx, "t1"))
	tenant, err := s.Tenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tenant.Credits)

	// Does not go below zero.
	require.NoError(t, s.DebitCredit(ctx, "t1"))
	require.NoError(t, s.DebitCredit(ctx, "t1"))
	tenant, err = s.Tenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), tenant.Credits)

	// No-op for privileged tenants.
	require.NoError(t, s.DebitCredit(ctx, "adm"))
	admin, err := s.Tenant(ctx, "adm")
	require.NoError(t, err)
	assert.Equal(t, int64(5), admin.Credits)
}

func TestSentTodayScopedToCalendarDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.AppendSentRecord(ctx, &models.SentRecord{TenantID: "t1", Phone: "1", Outcome: models.OutcomeSent}))
	require.NoError(t, s.AppendSentRecord(ctx, &models.SentRecord{TenantID: "t1", Phone: "2", Outcome: models.OutcomeFailed}))
	require.NoError(t, s.AppendSentRecord(ctx, &models.SentRecord{TenantID: "t2", Phone: "3", Outcome: models.OutcomeSent}))
	// Yesterday's send must not count against today.
	require.NoError(t, s.db.Create(&models.SentRecord{
		TenantID: "t1", Phone: "4", Outcome: models.OutcomeSent, CreatedAt: now.AddDate(0, 0, -1),
	}).Error)

	count, err := s.SentToday(ctx, "t1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDueBatchesOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.db.Create(&models.ScheduledBatch{TenantID: "t1", Status: models.BatchPending, DueAt: now.Add(-time.Minute)}).Error)
	require.NoError(t, s.db.Create(&models.ScheduledBatch{TenantID: "t1", Status: models.BatchPending, DueAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, s.db.Create(&models.ScheduledBatch{TenantID: "t1", Status: models.BatchPending, DueAt: now.Add(time.Hour)}).Error)
	require.NoError(t, s.db.Create(&models.ScheduledBatch{TenantID: "t1", Status: models.BatchClaimed, DueAt: now.Add(-2 * time.Hour)}).Error)

	batches, err := s.DueBatches(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.True(t, batches[0].DueAt.Before(batches[1].DueAt), "oldest-due first")

	limited, err := s.DueBatches(ctx, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestClaimBatchIsSingleWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := &models.ScheduledBatch{TenantID: "t1", Status: models.BatchPending, DueAt: time.Now()}
	require.NoError(t, s.db.Create(batch).Error)

	claimed, err := s.ClaimBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.ClaimBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	require.NoError(t, s.FinishBatch(ctx, batch.ID, models.BatchCompleted))
	var got models.ScheduledBatch
	require.NoError(t, s.db.First(&got, batch.ID).Error)
	assert.Equal(t, models.BatchCompleted, got.Status)
}

func TestCustomersByAddresses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.db.Create(&models.Customer{TenantID: "t1", Phone: "111", Name: "A"}).Error)
	require.NoError(t, s.db.Create(&models.Customer{TenantID: "t1", Phone: "222", Name: "B"}).Error)
	require.NoError(t, s.db.Create(&models.Customer{TenantID: "t2", Phone: "333", Name: "C"}).Error)

	got, err := s.CustomersByAddresses(ctx, "t1", []string{"111", "333", "999"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "111", got[0].Phone)

	all, err := s.CustomersByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := s.CustomersByAddresses(ctx, "t1", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
