package domain

import "time"

type Review struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	TenantID   string     `json:"tenant_id"`
	TenantName string     `json:"tenant_name,omitempty"`
	Message    string     `json:"message"`
	PostedAt   time.Time  `json:"posted_at"`
	DeletedAt  *time.Time `json:"-"`
}
