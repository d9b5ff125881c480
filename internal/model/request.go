package model

type BreakdownRequest struct {
	TenantID   string    `json:"tenant_id"`
	VerticalID string    `json:"vertical_id"`
	Goal       GoalInput `json:"goal"`
}
