package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"planr/internal/database/models"

	"github.com/google/uuid"
)

type LabelRepository interface {
	Create(ctx context.Context, label *models.Label) error
	GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.Label, error)
	GetByCardID(ctx context.Context, cardID uuid.UUID) ([]models.Label, error)
	Update(ctx context.Context, id uuid.UUID, name, color *string) (*models.Label, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachToCard(ctx context.Context, cardID, labelID uuid.UUID) error
	DetachFromCard(ctx context.Context, cardID, labelID uuid.UUID) error
}

type labelRepository struct {
	db *sql.DB
}

func NewLabelRepository(db *sql.DB) LabelRepository {
	return &labelRepository{db: db}
}

const labelColumns = `id, project_id, name, color, created_at, updated_at`

func scanLabel(row interface{ Scan(...any) error }, l *models.Label) error {
	return row.Scan(&l.ID, &l.ProjectID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt)
}

func (r *labelRepository) Create(ctx context.Context, label *models.Label) error {
	query := `
		INSERT INTO kanban_labels (project_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, label.ProjectID, label.Name, label.Color).
		Scan(&label.ID, &label.CreatedAt, &label.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating label: %v", err)
	}
	return nil
}

func (r *labelRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM kanban_labels WHERE project_id = $1 ORDER BY created_at ASC`
	return r.queryLabels(ctx, query, projectID)
}

func (r *labelRepository) GetByCardID(ctx context.Context, cardID uuid.UUID) ([]models.Label, error) {
	query := `
		SELECT l.id, l.project_id, l.name, l.color, l.created_at, l.updated_at
		FROM kanban_labels l
		JOIN kanban_card_labels cl ON cl.label_id = l.id
		WHERE cl.card_id = $1`
	return r.queryLabels(ctx, query, cardID)
}

func (r *labelRepository) queryLabels(ctx context.Context, query string, arg any) ([]models.Label, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("error querying labels: %v", err)
	}
	defer rows.Close()

	labels := []models.Label{}
	for rows.Next() {
		var label models.Label
		if err := scanLabel(rows, &label); err != nil {
			return nil, fmt.Errorf("error scanning label: %v", err)
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating labels: %v", err)
	}
	return labels, nil
}

func (r *labelRepository) Update(ctx context.Context, id uuid.UUID, name, color *string) (*models.Label, error) {
	label := models.Label{}
	query := `
		UPDATE kanban_labels
		SET name = COALESCE($2, name), color = COALESCE($3, color), updated_at = now()
		WHERE id = $1
		RETURNING ` + labelColumns
	err := scanLabel(r.db.QueryRowContext(ctx, query, id, name, color), &label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating label: %v", err)
	}
	return &label, nil
}

func (r *labelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kanban_labels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting label: %v", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *labelRepository) AttachToCard(ctx context.Context, cardID, labelID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kanban_card_labels (card_id, label_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		cardID, labelID)
	if err != nil {
		return fmt.Errorf("error attaching label: %v", err)
	}
	return nil
}

func (r *labelRepository) DetachFromCard(ctx context.Context, cardID, labelID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kanban_card_labels WHERE card_id = $1 AND label_id = $2`,
		cardID, labelID)
	if err != nil {
		return fmt.Errorf("error detaching label: %v", err)
	}
	return nil
}
