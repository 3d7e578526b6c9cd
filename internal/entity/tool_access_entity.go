package entity

import (
	"time"

	"github.com/google/uuid"
)

type AccessType string

const (
	AccessTypePlan       AccessType = "plan"
	AccessTypeIndividual AccessType = "individual"
	AccessTypeAdmin      AccessType = "admin"
)

// ToolAccess is the entitlement of one principal to one tool.
// There is at most one per (PrincipalId, ToolId).
type ToolAccess struct {
	Id              uuid.UUID
	PrincipalId     uuid.UUID
	ToolId          string
	ToolName        string
	HasAccess       bool
	AccessType      AccessType
	ExpiresAt       *time.Time
	SourcePaymentId *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ActiveAt applies lazy expiry: a grant past its expiry counts as absent.
func (a *ToolAccess) ActiveAt(now time.Time) bool {
	if a == nil || !a.HasAccess {
		return false
	}
	return a.ExpiresAt == nil || !now.After(*a.ExpiresAt)
}

func (a *ToolAccess) Clone() *ToolAccess {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
