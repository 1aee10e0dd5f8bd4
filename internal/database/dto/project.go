package dto

import "github.com/google/uuid"

type ProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}
