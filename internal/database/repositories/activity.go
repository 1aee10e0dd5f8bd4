package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"planr/internal/database/models"

	"github.com/google/uuid"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByCardID(ctx context.Context, cardID uuid.UUID) ([]models.Activity, error)
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO kanban_activity (card_id, actor_id, type, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, activity.CardID, activity.ActorID, activity.Type, activity.Data).
		Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating activity: %v", err)
	}
	return nil
}

func (r *activityRepository) GetByCardID(ctx context.Context, cardID uuid.UUID) ([]models.Activity, error) {
	query := `SELECT id, card_id, actor_id, type, data, created_at FROM kanban_activity WHERE card_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("error querying activity: %v", err)
	}
	defer rows.Close()

	activity := []models.Activity{}
	for rows.Next() {
		var entry models.Activity
		err := rows.Scan(&entry.ID, &entry.CardID, &entry.ActorID, &entry.Type, &entry.Data, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning activity: %v", err)
		}
		activity = append(activity, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity: %v", err)
	}
	return activity, nil
}
