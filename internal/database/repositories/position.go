package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// scope is the sibling set over which dense 0-based positions are
// maintained: project for columns, column for cards, card for
// checklists, checklist for checklist items. The three functions below
// are the only code that writes the position column of any table.
type scope struct {
	table  string
	keyCol string
	keyID  uuid.UUID
	soft   bool // table has archived_at; ordering covers live rows only
}

func columnScope(projectID uuid.UUID) scope {
	return scope{table: "kanban_columns", keyCol: "project_id", keyID: projectID, soft: true}
}

func cardScope(columnID uuid.UUID) scope {
	return scope{table: "kanban_cards", keyCol: "column_id", keyID: columnID, soft: true}
}

func checklistScope(cardID uuid.UUID) scope {
	return scope{table: "kanban_checklists", keyCol: "card_id", keyID: cardID}
}

func checklistItemScope(checklistID uuid.UUID) scope {
	return scope{table: "kanban_checklist_items", keyCol: "checklist_id", keyID: checklistID}
}

func (s scope) live() string {
	if s.soft {
		return " AND archived_at IS NULL"
	}
	return ""
}

// nextPosition returns max(position)+1 over the live siblings of the
// scope, or 0 when the scope is empty.
func nextPosition(ctx context.Context, tx *sql.Tx, s scope) (int, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(MAX(position) + 1, 0) FROM %s WHERE %s = $1%s`,
		s.table, s.keyCol, s.live())
	var next int
	if err := tx.QueryRowContext(ctx, query, s.keyID).Scan(&next); err != nil {
		return 0, fmt.Errorf("error computing next position: %v", err)
	}
	return next, nil
}

// compactAfterRemoval closes the gap left at removedPos so the live
// siblings keep contiguous positions without a full renumber.
func compactAfterRemoval(ctx context.Context, tx *sql.Tx, s scope, removedPos int) error {
	query := fmt.Sprintf(
		`UPDATE %s SET position = position - 1 WHERE %s = $1 AND position > $2%s`,
		s.table, s.keyCol, s.live())
	if _, err := tx.ExecContext(ctx, query, s.keyID, removedPos); err != nil {
		return fmt.Errorf("error compacting positions: %v", err)
	}
	return nil
}

// applyExplicitOrder persists a caller-supplied total order: the id at
// index i gets position i. Ids that do not belong to the scope are
// skipped by the per-row scope condition.
func applyExplicitOrder(ctx context.Context, tx *sql.Tx, s scope, orderedIDs []uuid.UUID) error {
	query := fmt.Sprintf(
		`UPDATE %s SET position = $2, updated_at = now() WHERE id = $1 AND %s = $3`,
		s.table, s.keyCol)
	for i, id := range orderedIDs {
		if id == uuid.Nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, query, id, i, s.keyID); err != nil {
			return fmt.Errorf("error applying order: %v", err)
		}
	}
	return nil
}
