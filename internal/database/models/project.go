package models

import (
	"time"

	"github.com/google/uuid"
)

// Project roles stored on memberships.
const (
	RoleManager = "MANAGER"
	RoleMember  = "MEMBER"
	RoleViewer  = "VIEWER"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Membership struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}
