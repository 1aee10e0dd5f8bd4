package models

import (
	"time"

	"github.com/google/uuid"
)

// Column is a board column. Live columns of a project hold contiguous
// 0-based positions. WipLimit, when set, caps the number of live cards
// the column admits.
type Column struct {
	ID         uuid.UUID  `json:"id"`
	ProjectID  uuid.UUID  `json:"project_id"`
	Name       string     `json:"name"`
	Color      string     `json:"color"`
	Position   int        `json:"position"`
	WipLimit   *int       `json:"wip_limit"`
	ArchivedAt *time.Time `json:"archived_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
