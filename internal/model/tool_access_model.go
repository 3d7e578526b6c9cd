package model

import (
	"time"

	"github.com/google/uuid"
)

type ToolAccess struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PrincipalId     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_tool_access_principal_tool,priority:1"`
	ToolId          string     `gorm:"type:varchar(100);not null;uniqueIndex:uk_tool_access_principal_tool,priority:2"`
	ToolName        string     `gorm:"type:varchar(255);not null"`
	HasAccess       bool       `gorm:"not null;default:false"`
	AccessType      string     `gorm:"type:varchar(20);not null"`
	ExpiresAt       *time.Time `gorm:"index"`
	SourcePaymentId *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (ToolAccess) TableName() string {
	return "tool_access"
}
