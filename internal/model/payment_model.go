package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Payment struct {
	Id            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	PayerId       uuid.UUID         `gorm:"type:uuid;not null;index"`
	PayerEmail    string            `gorm:"type:varchar(255)"`
	Kind          string            `gorm:"type:varchar(20);not null"`
	ItemName      string            `gorm:"type:varchar(255);not null"`
	Amount        decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Method        string            `gorm:"type:varchar(20);not null"`
	Status        string            `gorm:"type:varchar(20);not null;index"`
	TransactionId *string           `gorm:"type:varchar(255)"`
	PixTxId       *string           `gorm:"type:varchar(25);uniqueIndex"`
	FailureReason *string           `gorm:"type:text"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime"`
	CompletedAt   *time.Time
	FailedAt      *time.Time
	ValidUntil    *time.Time
}

func (Payment) TableName() string {
	return "payments"
}
