package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Custom field types accepted by the defs table.
const (
	FieldTypeText    = "TEXT"
	FieldTypeNumber  = "NUMBER"
	FieldTypeDate    = "DATE"
	FieldTypeList    = "LIST"
	FieldTypeBoolean = "BOOLEAN"
)

type CustomFieldDef struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"project_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Options   json.RawMessage `json:"options"`
	Required  bool            `json:"required"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type CustomFieldValue struct {
	CardID    uuid.UUID       `json:"card_id"`
	FieldID   uuid.UUID       `json:"field_id"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CardCustomField is a field definition joined with the card's value,
// which is null when the card has no value for the field yet.
type CardCustomField struct {
	CustomFieldDef
	Value json.RawMessage `json:"value"`
}
