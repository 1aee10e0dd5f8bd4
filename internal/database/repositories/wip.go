package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// checkAdmission decides whether incoming cards fit under the column's
// WIP limit and returns the column's project id. It locks the column
// row so two concurrent admissions cannot both see spare capacity and
// both commit past the limit. A card already in the column is not
// subtracted from the current count, so a same-column reposition is
// judged exactly like an inter-column move.
func checkAdmission(ctx context.Context, tx *sql.Tx, columnID uuid.UUID, incoming int) (uuid.UUID, error) {
	var projectID uuid.UUID
	var wipLimit sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT project_id, wip_limit FROM kanban_columns WHERE id = $1 FOR UPDATE`,
		columnID).Scan(&projectID, &wipLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("error locking column: %v", err)
	}

	if !wipLimit.Valid {
		return projectID, nil
	}

	var live int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kanban_cards WHERE column_id = $1 AND archived_at IS NULL`,
		columnID).Scan(&live)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error counting cards: %v", err)
	}

	if live+incoming > int(wipLimit.Int64) {
		return uuid.Nil, ErrWipLimitExceeded
	}
	return projectID, nil
}

// lockColumn takes the column row lock without judging capacity, for
// writers that append into the column's card scope outside the
// admission path. Two appenders that read MAX(position) without this
// lock could both claim the same slot.
func lockColumn(ctx context.Context, tx *sql.Tx, columnID uuid.UUID) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM kanban_columns WHERE id = $1 FOR UPDATE`, columnID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error locking column: %v", err)
	}
	return nil
}

// lockProject is lockColumn for the project's column scope.
func lockProject(ctx context.Context, tx *sql.Tx, projectID uuid.UUID) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error locking project: %v", err)
	}
	return nil
}
