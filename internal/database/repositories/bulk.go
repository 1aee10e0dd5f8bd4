package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// verifyProjectCards confirms every id resolves to a card of the given
// project. Any missing or foreign id fails the whole batch before a
// single row is touched.
func verifyProjectCards(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, projectID uuid.UUID, cardIDs []uuid.UUID) error {
	for _, id := range cardIDs {
		var one int
		err := q.QueryRowContext(ctx,
			`SELECT 1 FROM kanban_cards WHERE id = $1 AND project_id = $2`,
			id, projectID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error verifying card: %v", err)
		}
	}
	return nil
}

// BulkArchive archives each card in turn. Every card's archive is its
// own transaction, so a failure partway leaves the earlier cards
// archived; callers re-query the board to observe the true state.
func (r *cardRepository) BulkArchive(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID) error {
	if err := verifyProjectCards(ctx, r.db, projectID, cardIDs); err != nil {
		return err
	}
	for _, id := range cardIDs {
		if err := r.Archive(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// BulkRestore restores each card in turn with the same per-card
// transaction shape as BulkArchive.
func (r *cardRepository) BulkRestore(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID) error {
	if err := verifyProjectCards(ctx, r.db, projectID, cardIDs); err != nil {
		return err
	}
	for _, id := range cardIDs {
		if err := r.Restore(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// BulkMove appends the cards to the destination column in the order
// given, inside one transaction. Capacity is checked once against the
// destination's live count plus the whole batch; if it does not fit,
// nothing moves.
func (r *cardRepository) BulkMove(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID, toColumnID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		// Lock every card up front; a miss or an archived card rejects
		// the batch. An archived card's stored position is stale and
		// closing a gap for it would shift live siblings that never
		// left.
		for _, id := range cardIDs {
			var archivedAt sql.NullTime
			err := tx.QueryRowContext(ctx,
				`SELECT archived_at FROM kanban_cards WHERE id = $1 AND project_id = $2 FOR UPDATE`,
				id, projectID).Scan(&archivedAt)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("error locking card: %v", err)
			}
			if archivedAt.Valid {
				return ErrNotFound
			}
		}

		if _, err := checkAdmission(ctx, tx, toColumnID, len(cardIDs)); err != nil {
			return err
		}

		for _, id := range cardIDs {
			// Re-read inside the loop: an earlier card leaving the same
			// source column shifts the positions read before it.
			var fromColumnID uuid.UUID
			var oldPosition int
			err := tx.QueryRowContext(ctx,
				`SELECT column_id, position FROM kanban_cards WHERE id = $1`,
				id).Scan(&fromColumnID, &oldPosition)
			if err != nil {
				return fmt.Errorf("error reading card: %v", err)
			}

			if err := compactAfterRemoval(ctx, tx, cardScope(fromColumnID), oldPosition); err != nil {
				return err
			}

			position, err := nextPosition(ctx, tx, cardScope(toColumnID))
			if err != nil {
				return err
			}

			_, err = tx.ExecContext(ctx,
				`UPDATE kanban_cards SET column_id = $2, position = $3, updated_at = now() WHERE id = $1`,
				id, toColumnID, position)
			if err != nil {
				return fmt.Errorf("error moving card: %v", err)
			}
		}
		return nil
	})
}

// BulkAssign adds or removes one assignee across the batch. Both
// directions are idempotent per card.
func (r *cardRepository) BulkAssign(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID, userID uuid.UUID, add bool) error {
	if err := verifyProjectCards(ctx, r.db, projectID, cardIDs); err != nil {
		return err
	}
	for _, id := range cardIDs {
		var err error
		if add {
			_, err = r.db.ExecContext(ctx,
				`INSERT INTO kanban_card_assignees (card_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, userID)
		} else {
			_, err = r.db.ExecContext(ctx,
				`DELETE FROM kanban_card_assignees WHERE card_id = $1 AND user_id = $2`,
				id, userID)
		}
		if err != nil {
			return fmt.Errorf("error updating assignee: %v", err)
		}
	}
	return nil
}

// BulkLabel attaches or detaches one label across the batch.
func (r *cardRepository) BulkLabel(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID, labelID uuid.UUID, attach bool) error {
	if err := verifyProjectCards(ctx, r.db, projectID, cardIDs); err != nil {
		return err
	}
	for _, id := range cardIDs {
		var err error
		if attach {
			_, err = r.db.ExecContext(ctx,
				`INSERT INTO kanban_card_labels (card_id, label_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, labelID)
		} else {
			_, err = r.db.ExecContext(ctx,
				`DELETE FROM kanban_card_labels WHERE card_id = $1 AND label_id = $2`,
				id, labelID)
		}
		if err != nil {
			return fmt.Errorf("error updating label: %v", err)
		}
	}
	return nil
}
