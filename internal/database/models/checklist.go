package models

import (
	"time"

	"github.com/google/uuid"
)

type Checklist struct {
	ID        uuid.UUID `json:"id"`
	CardID    uuid.UUID `json:"card_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChecklistItem struct {
	ID          uuid.UUID  `json:"id"`
	ChecklistID uuid.UUID  `json:"checklist_id"`
	Title       string     `json:"title"`
	Position    int        `json:"position"`
	DoneAt      *time.Time `json:"done_at"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ChecklistWithItems struct {
	Checklist
	Items []ChecklistItem `json:"items"`
}
