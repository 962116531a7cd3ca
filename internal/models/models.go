package models

import (
	"time"
)

// Tenant roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Package tiers, ascending daily ceilings
const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// SentRecord outcomes
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// ScheduledBatch statuses. Transitions are monotonic:
// pending -> claimed -> completed|failed.
const (
	BatchPending   = "pending"
	BatchClaimed   = "claimed"
	BatchCompleted = "completed"
	BatchFailed    = "failed"
)

// ScheduledBatch recipient selectors
const (
	SelectorAll  = "all"
	SelectorList = "list"
)

// Tenant represents one account namespace: credit balance, package tier
// and the WhatsApp session credentials used to send on its behalf.
type Tenant struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"tenant_id"`
	Name          string    `gorm:"type:varchar(255)" json:"name"`
	Role          string    `gorm:"type:varchar(20);default:'user'" json:"role"`
	Tier          string    `gorm:"type:varchar(20);default:'basic'" json:"tier"`
	Credits       int64     `gorm:"default:0" json:"credits"`
	WhatsAppToken string    `gorm:"type:text" json:"-"`
	PhoneNumberID string    `gorm:"type:varchar(50)" json:"phone_number_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// Customer represents one contact owned by a tenant
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TenantID   string    `gorm:"type:varchar(50);not null;index" json:"tenant_id"`
	Phone      string    `gorm:"type:varchar(50);not null;index" json:"phone"`
	Name       string    `gorm:"type:varchar(255)" json:"name"`
	Attributes string    `gorm:"type:text" json:"attributes"` // JSON map of substitution values
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// SentRecord is an append-only fact: one row per attempted recipient.
// Never updated or deleted by the engine.
type SentRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"type:varchar(50);not null;index" json:"tenant_id"`
	Phone     string    `gorm:"type:varchar(50);not null" json:"phone"`
	Content   string    `gorm:"type:text" json:"content"`
	Outcome   string    `gorm:"type:varchar(10);not null" json:"outcome"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (SentRecord) TableName() string {
	return "sent_records"
}

// ScheduledBatch is a deferred campaign definition, promoted into an
// active dispatch run once due.
type ScheduledBatch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"type:varchar(50);not null;index" json:"tenant_id"`
	Selector  string    `gorm:"type:varchar(10);default:'list'" json:"selector"`
	Addresses string    `gorm:"type:text" json:"addresses"` // JSON array, used when selector = list
	Template  string    `gorm:"type:text" json:"template"`
	MediaURL  string    `gorm:"type:text" json:"media_url"`
	DueAt     time.Time `gorm:"not null;index" json:"due_at"`
	Status    string    `gorm:"type:varchar(10);default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ScheduledBatch) TableName() string {
	return "scheduled_batches"
}
