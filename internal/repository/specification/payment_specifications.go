package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ByPayerID struct {
	PayerID uuid.UUID
}

func (s ByPayerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payer_id = ?", s.PayerID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ForUpdate takes a row lock held until commit or rollback.
type ForUpdate struct{}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

type ByPrincipalID struct {
	PrincipalID uuid.UUID
}

func (s ByPrincipalID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("principal_id = ?", s.PrincipalID)
}

type ByToolID struct {
	ToolID string
}

func (s ByToolID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tool_id = ?", s.ToolID)
}

// ExpiredBefore matches active grants that have a deadline earlier than At.
type ExpiredBefore struct {
	At time.Time
}

func (s ExpiredBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("has_access = ? AND expires_at IS NOT NULL AND expires_at < ?", true, s.At)
}
