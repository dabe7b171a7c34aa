package projects

import (
	"context"
	"time"
)

type Project struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Update holds the fields to change, nil fields are left untouched
type Update struct {
	Name        *string
	Description *string
}

// Repo persists projects. Every lookup is scoped to a tenant so that ids from other tenants read as absent.
type Repo interface {
	Create(ctx context.Context, project *Project) error
	Get(ctx context.Context, tenantID, id string) (*Project, error)
	// List returns the tenant's projects, newest first
	List(ctx context.Context, tenantID string) ([]*Project, error)
	Update(ctx context.Context, tenantID, id string, update Update) (*Project, error)
	Delete(ctx context.Context, tenantID, id string) error
}
