package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"planr/internal/database/dto"
	"planr/internal/database/models"

	"github.com/google/uuid"
)

const defaultColumnColor = "#2563eb"

type ColumnRepository interface {
	Create(ctx context.Context, column *models.Column) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Column, error)
	Update(ctx context.Context, id uuid.UUID, updates dto.UpdateColumnRequest) (*models.Column, error)
	Archive(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, projectID uuid.UUID, orderedIDs []uuid.UUID) error
	ListArchived(ctx context.Context, projectID uuid.UUID) ([]models.Column, error)
}

type columnRepository struct {
	db *sql.DB
}

func NewColumnRepository(db *sql.DB) ColumnRepository {
	return &columnRepository{db: db}
}

const columnColumns = `id, project_id, name, color, position, wip_limit, archived_at, created_at, updated_at`

func scanColumn(row interface{ Scan(...any) error }, c *models.Column) error {
	return row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Color, &c.Position,
		&c.WipLimit, &c.ArchivedAt, &c.CreatedAt, &c.UpdatedAt)
}

// Create appends the column at the end of the project's live columns.
// ProjectID and Name must be set; an empty Color falls back to the
// default.
func (r *columnRepository) Create(ctx context.Context, column *models.Column) error {
	if column.Color == "" {
		column.Color = defaultColumnColor
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockProject(ctx, tx, column.ProjectID); err != nil {
			return err
		}
		position, err := nextPosition(ctx, tx, columnScope(column.ProjectID))
		if err != nil {
			return err
		}
		query := `
			INSERT INTO kanban_columns (project_id, name, color, position, wip_limit)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, position, created_at, updated_at`
		err = tx.QueryRowContext(ctx, query, column.ProjectID, column.Name, column.Color, position, column.WipLimit).
			Scan(&column.ID, &column.Position, &column.CreatedAt, &column.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error creating column: %v", err)
		}
		return nil
	})
}

func (r *columnRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Column, error) {
	column := models.Column{}
	query := `SELECT ` + columnColumns + ` FROM kanban_columns WHERE id = $1`
	err := scanColumn(r.db.QueryRowContext(ctx, query, id), &column)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting column: %v", err)
	}
	return &column, nil
}

// Update applies a partial update. Tightening the WIP limit below the
// current live count is allowed and does not evict cards.
func (r *columnRepository) Update(ctx context.Context, id uuid.UUID, updates dto.UpdateColumnRequest) (*models.Column, error) {
	column := models.Column{}
	query := `
		UPDATE kanban_columns
		SET name = COALESCE($2, name),
		    color = COALESCE($3, color),
		    wip_limit = CASE WHEN $5 THEN NULL ELSE COALESCE($4, wip_limit) END,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + columnColumns
	err := scanColumn(r.db.QueryRowContext(ctx, query, id, updates.Name, updates.Color, updates.WipLimit, updates.ClearWipLimit), &column)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating column: %v", err)
	}
	return &column, nil
}

// Archive soft-deletes the column, archives every live card in it and
// compacts the project's remaining live columns. Archiving an already
// archived column is a no-op.
func (r *columnRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var projectID uuid.UUID
		var position int
		var archivedAt sql.NullTime
		err := tx.QueryRowContext(ctx,
			`SELECT project_id, position, archived_at FROM kanban_columns WHERE id = $1 FOR UPDATE`,
			id).Scan(&projectID, &position, &archivedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error locking column: %v", err)
		}
		if archivedAt.Valid {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE kanban_columns SET archived_at = now(), updated_at = now() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error archiving column: %v", err)
		}

		// The whole column leaves the board at once, so its cards keep
		// their relative positions for a later restore.
		_, err = tx.ExecContext(ctx,
			`UPDATE kanban_cards SET archived_at = now(), updated_at = now() WHERE column_id = $1 AND archived_at IS NULL`, id)
		if err != nil {
			return fmt.Errorf("error archiving column cards: %v", err)
		}

		return compactAfterRemoval(ctx, tx, columnScope(projectID), position)
	})
}

// Restore re-admits the column at the end of the project's live columns
// and clears the archival flag, in place, on exactly the cards its own
// archive swept. Cards archived individually before the column went
// away were compacted out of the scope already; reviving them at their
// stale positions would collide with the survivors, so they stay in the
// archive.
func (r *columnRepository) Restore(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var projectID uuid.UUID
		var archivedAt sql.NullTime
		err := tx.QueryRowContext(ctx,
			`SELECT project_id, archived_at FROM kanban_columns WHERE id = $1 FOR UPDATE`,
			id).Scan(&projectID, &archivedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error locking column: %v", err)
		}
		if !archivedAt.Valid {
			return nil
		}

		if err := lockProject(ctx, tx, projectID); err != nil {
			return err
		}
		position, err := nextPosition(ctx, tx, columnScope(projectID))
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE kanban_columns SET archived_at = NULL, position = $2, updated_at = now() WHERE id = $1`,
			id, position)
		if err != nil {
			return fmt.Errorf("error restoring column: %v", err)
		}

		// The cascade stamped the cards with the column's own archival
		// timestamp (one now() per transaction), so the cutoff is exact.
		_, err = tx.ExecContext(ctx,
			`UPDATE kanban_cards SET archived_at = NULL, updated_at = now() WHERE column_id = $1 AND archived_at >= $2`,
			id, archivedAt.Time)
		if err != nil {
			return fmt.Errorf("error restoring column cards: %v", err)
		}
		return nil
	})
}

func (r *columnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kanban_columns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting column: %v", err)
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

func (r *columnRepository) Reorder(ctx context.Context, projectID uuid.UUID, orderedIDs []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return applyExplicitOrder(ctx, tx, columnScope(projectID), orderedIDs)
	})
}

func (r *columnRepository) ListArchived(ctx context.Context, projectID uuid.UUID) ([]models.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM kanban_columns WHERE project_id = $1 AND archived_at IS NOT NULL ORDER BY archived_at DESC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying archived columns: %v", err)
	}
	defer rows.Close()

	columns := []models.Column{}
	for rows.Next() {
		var column models.Column
		if err := scanColumn(rows, &column); err != nil {
			return nil, fmt.Errorf("error scanning column: %v", err)
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %v", err)
	}
	return columns, nil
}
