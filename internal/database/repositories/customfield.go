package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"planr/internal/database/dto"
	"planr/internal/database/models"

	"github.com/google/uuid"
)

type CustomFieldRepository interface {
	CreateDef(ctx context.Context, def *models.CustomFieldDef) error
	GetDefsByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.CustomFieldDef, error)
	UpdateDef(ctx context.Context, id uuid.UUID, updates dto.CustomFieldDefRequest) (*models.CustomFieldDef, error)
	DeleteDef(ctx context.Context, id uuid.UUID) error
	UpsertValue(ctx context.Context, cardID, fieldID uuid.UUID, value json.RawMessage) (*models.CustomFieldValue, error)
	GetValuesForCard(ctx context.Context, cardID uuid.UUID) ([]models.CardCustomField, error)
}

type customFieldRepository struct {
	db *sql.DB
}

func NewCustomFieldRepository(db *sql.DB) CustomFieldRepository {
	return &customFieldRepository{db: db}
}

const fieldDefColumns = `id, project_id, name, type, options, required, created_at, updated_at`

func scanFieldDef(row interface{ Scan(...any) error }, d *models.CustomFieldDef) error {
	return row.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Type, &d.Options, &d.Required, &d.CreatedAt, &d.UpdatedAt)
}

func (r *customFieldRepository) CreateDef(ctx context.Context, def *models.CustomFieldDef) error {
	query := `
		INSERT INTO kanban_custom_field_defs (project_id, name, type, options, required)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, def.ProjectID, def.Name, def.Type, def.Options, def.Required).
		Scan(&def.ID, &def.CreatedAt, &def.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating custom field: %v", err)
	}
	return nil
}

func (r *customFieldRepository) GetDefsByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.CustomFieldDef, error) {
	query := `SELECT ` + fieldDefColumns + ` FROM kanban_custom_field_defs WHERE project_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying custom fields: %v", err)
	}
	defer rows.Close()

	defs := []models.CustomFieldDef{}
	for rows.Next() {
		var def models.CustomFieldDef
		if err := scanFieldDef(rows, &def); err != nil {
			return nil, fmt.Errorf("error scanning custom field: %v", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custom fields: %v", err)
	}
	return defs, nil
}

func (r *customFieldRepository) UpdateDef(ctx context.Context, id uuid.UUID, updates dto.CustomFieldDefRequest) (*models.CustomFieldDef, error) {
	def := models.CustomFieldDef{}
	query := `
		UPDATE kanban_custom_field_defs
		SET name = COALESCE($2, name),
		    type = COALESCE($3, type),
		    options = $4,
		    required = COALESCE($5, required),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + fieldDefColumns
	err := scanFieldDef(r.db.QueryRowContext(ctx, query, id, updates.Name, updates.Type, updates.Options, updates.Required), &def)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating custom field: %v", err)
	}
	return &def, nil
}

func (r *customFieldRepository) DeleteDef(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kanban_custom_field_defs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting custom field: %v", err)
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

func (r *customFieldRepository) UpsertValue(ctx context.Context, cardID, fieldID uuid.UUID, value json.RawMessage) (*models.CustomFieldValue, error) {
	row := models.CustomFieldValue{}
	query := `
		INSERT INTO kanban_card_custom_fields (card_id, field_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (card_id, field_id) DO UPDATE SET value = $3, updated_at = now()
		RETURNING card_id, field_id, value, updated_at`
	err := r.db.QueryRowContext(ctx, query, cardID, fieldID, value).
		Scan(&row.CardID, &row.FieldID, &row.Value, &row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error upserting custom field value: %v", err)
	}
	return &row, nil
}

// GetValuesForCard returns every field defined for the card's project,
// left-joined with the card's stored value (null when unset).
func (r *customFieldRepository) GetValuesForCard(ctx context.Context, cardID uuid.UUID) ([]models.CardCustomField, error) {
	query := `
		SELECT d.id, d.project_id, d.name, d.type, d.options, d.required, d.created_at, d.updated_at, c.value
		FROM kanban_custom_field_defs d
		LEFT JOIN kanban_card_custom_fields c ON c.field_id = d.id AND c.card_id = $1
		WHERE d.project_id = (SELECT project_id FROM kanban_cards WHERE id = $1)
		ORDER BY d.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("error querying card custom fields: %v", err)
	}
	defer rows.Close()

	fields := []models.CardCustomField{}
	for rows.Next() {
		var field models.CardCustomField
		err := rows.Scan(&field.ID, &field.ProjectID, &field.Name, &field.Type, &field.Options,
			&field.Required, &field.CreatedAt, &field.UpdatedAt, &field.Value)
		if err != nil {
			return nil, fmt.Errorf("error scanning card custom field: %v", err)
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card custom fields: %v", err)
	}
	return fields, nil
}
