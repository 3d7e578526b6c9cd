package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentKind string
type PaymentMethod string
type PaymentStatus string

const (
	PaymentKindPlan PaymentKind = "plan"
	PaymentKindTool PaymentKind = "tool"

	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodInstantPayment PaymentMethod = "pix"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (k PaymentKind) Valid() bool {
	return k == PaymentKindPlan || k == PaymentKindTool
}

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodInstantPayment
}

// IsTerminal reports whether no further transition can change the status.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// CanTransitionTo encodes the lifecycle: pending moves to either terminal
// state, completed may be confirmed again as a no-op, failed may be failed
// again as a no-op.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed
	case PaymentStatusCompleted:
		return next == PaymentStatusCompleted
	case PaymentStatusFailed:
		return next == PaymentStatusFailed
	}
	return false
}

// PaymentRecord is a registered purchase intent. Amounts are BRL with two
// fractional digits.
type PaymentRecord struct {
	Id            uuid.UUID
	PayerId       uuid.UUID
	PayerEmail    string
	Kind          PaymentKind
	ItemName      string
	Amount        decimal.Decimal
	Method        PaymentMethod
	Status        PaymentStatus
	TransactionId *string
	PixTxId       *string
	FailureReason *string
	Metadata      map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
	FailedAt      *time.Time
	ValidUntil    *time.Time
}

// Clone returns a copy that shares no mutable state with p.
func (p *PaymentRecord) Clone() *PaymentRecord {
	if p == nil {
		return nil
	}
	c := *p
	if p.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(p.Metadata))
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
