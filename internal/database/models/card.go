package models

import (
	"time"

	"github.com/google/uuid"
)

// Card is a board card. A card whose ParentID is set is a subtask of
// that card and otherwise behaves like any other card in its column.
type Card struct {
	ID          uuid.UUID  `json:"id"`
	ColumnID    uuid.UUID  `json:"column_id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Position    int        `json:"position"`
	Priority    *string    `json:"priority"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	ArchivedAt  *time.Time `json:"archived_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
