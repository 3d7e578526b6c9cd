package dto

import "time"

type ToolAccessCheckResponse struct {
	ToolId    string `json:"tool_id"`
	HasAccess bool   `json:"has_access"`
}

type ToolAccessResponse struct {
	ToolId     string     `json:"tool_id"`
	ToolName   string     `json:"tool_name"`
	HasAccess  bool       `json:"has_access"`
	AccessType string     `json:"access_type"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}
