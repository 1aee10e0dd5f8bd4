package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateColumnRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type UpdateColumnRequest struct {
	Name          *string `json:"name"`
	Color         *string `json:"color"`
	WipLimit      *int    `json:"wip_limit"`
	ClearWipLimit bool    `json:"clear_wip_limit"`
}

type CreateCardRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

type UpdateCardRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
}

type MoveCardRequest struct {
	ToColumnID uuid.UUID `json:"to_column_id"`
	Position   int       `json:"position"`
}

type ReorderRequest struct {
	OrderedIDs []uuid.UUID `json:"ordered_ids"`
}

type BulkCardsRequest struct {
	CardIDs []uuid.UUID `json:"card_ids"`
}

type BulkMoveRequest struct {
	CardIDs    []uuid.UUID `json:"card_ids"`
	ToColumnID uuid.UUID   `json:"to_column_id"`
}

type BulkAssignRequest struct {
	CardIDs []uuid.UUID `json:"card_ids"`
	UserID  uuid.UUID   `json:"user_id"`
	Action  string      `json:"action"` // "add" or "remove"
}

type BulkLabelRequest struct {
	CardIDs []uuid.UUID `json:"card_ids"`
	LabelID uuid.UUID   `json:"label_id"`
	Action  string      `json:"action"` // "attach" or "detach"
}

type CreateChecklistRequest struct {
	Title string `json:"title"`
}

type UpdateChecklistRequest struct {
	Title *string `json:"title"`
}

type CreateChecklistItemRequest struct {
	Title string `json:"title"`
}

type UpdateChecklistItemRequest struct {
	Title      *string    `json:"title"`
	DoneAt     *time.Time `json:"done_at"`
	AssigneeID *uuid.UUID `json:"assignee_id"`
	DueDate    *time.Time `json:"due_date"`
}

type LabelRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type CommentRequest struct {
	Body string `json:"body"`
}

type CustomFieldDefRequest struct {
	Name     *string         `json:"name"`
	Type     *string         `json:"type"`
	Options  json.RawMessage `json:"options"`
	Required *bool           `json:"required"`
}

type CustomFieldValueRequest struct {
	Value json.RawMessage `json:"value"`
}
