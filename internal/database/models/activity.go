package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Activity struct {
	ID        uuid.UUID       `json:"id"`
	CardID    uuid.UUID       `json:"card_id"`
	ActorID   uuid.UUID       `json:"actor_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}
