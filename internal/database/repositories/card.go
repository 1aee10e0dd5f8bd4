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

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error)
	Update(ctx context.Context, id uuid.UUID, updates dto.UpdateCardRequest) (*models.Card, error)
	Archive(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Move(ctx context.Context, id uuid.UUID, toColumnID uuid.UUID, position int) error
	Reorder(ctx context.Context, columnID uuid.UUID, orderedIDs []uuid.UUID) error
	ListArchived(ctx context.Context, projectID uuid.UUID) ([]models.Card, error)

	BulkArchive(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID) error
	BulkRestore(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID) error
	BulkMove(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID, toColumnID uuid.UUID) error
	BulkAssign(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID, userID uuid.UUID, add bool) error
	BulkLabel(ctx context.Context, projectID uuid.UUID, cardIDs []uuid.UUID, labelID uuid.UUID, attach bool) error
}

type cardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `id, column_id, project_id, parent_id, title, description, position, priority, start_date, due_date, completed_at, archived_at, created_at, updated_at`

func scanCard(row interface{ Scan(...any) error }, c *models.Card) error {
	return row.Scan(&c.ID, &c.ColumnID, &c.ProjectID, &c.ParentID, &c.Title,
		&c.Description, &c.Position, &c.Priority, &c.StartDate, &c.DueDate,
		&c.CompletedAt, &c.ArchivedAt, &c.CreatedAt, &c.UpdatedAt)
}

// Create admits the card against the destination column's WIP limit and
// appends it at the end of the column's live cards. ColumnID, ProjectID
// and Title must be set. A ProjectID that does not match the column's
// is reported as ErrNotFound.
func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		projectID, err := checkAdmission(ctx, tx, card.ColumnID, 1)
		if err != nil {
			return err
		}
		if projectID != card.ProjectID {
			return ErrNotFound
		}

		position, err := nextPosition(ctx, tx, cardScope(card.ColumnID))
		if err != nil {
			return err
		}

		query := `
			INSERT INTO kanban_cards (column_id, project_id, parent_id, title, description, position, priority, start_date, due_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, position, created_at, updated_at`
		err = tx.QueryRowContext(ctx, query, card.ColumnID, card.ProjectID, card.ParentID,
			card.Title, card.Description, position, card.Priority, card.StartDate, card.DueDate).
			Scan(&card.ID, &card.Position, &card.CreatedAt, &card.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error creating card: %v", err)
		}
		return nil
	})
}

func (r *cardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	card := models.Card{}
	query := `SELECT ` + cardColumns + ` FROM kanban_cards WHERE id = $1`
	err := scanCard(r.db.QueryRowContext(ctx, query, id), &card)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting card: %v", err)
	}
	return &card, nil
}

// Update applies a partial update of the card's own fields. Moving the
// card or changing its archival state goes through Move, Archive and
// Restore instead. Description and the date fields are overwritten with
// whatever the caller sent, nil included, because the board client
// always submits the full detail form.
func (r *cardRepository) Update(ctx context.Context, id uuid.UUID, updates dto.UpdateCardRequest) (*models.Card, error) {
	card := models.Card{}
	query := `
		UPDATE kanban_cards
		SET title = COALESCE($2, title),
		    description = $3,
		    priority = $4,
		    start_date = $5,
		    due_date = $6,
		    completed_at = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + cardColumns
	err := scanCard(r.db.QueryRowContext(ctx, query, id, updates.Title, updates.Description,
		updates.Priority, updates.StartDate, updates.DueDate, updates.CompletedAt), &card)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating card: %v", err)
	}
	return &card, nil
}

// Archive soft-deletes the card and compacts its column's live cards.
func (r *cardRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return archiveCardTx(ctx, tx, id)
	})
}

func archiveCardTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var columnID uuid.UUID
	var position int
	var archivedAt sql.NullTime
	err := tx.QueryRowContext(ctx,
		`SELECT column_id, position, archived_at FROM kanban_cards WHERE id = $1 FOR UPDATE`,
		id).Scan(&columnID, &position, &archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error locking card: %v", err)
	}
	if archivedAt.Valid {
		return nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE kanban_cards SET archived_at = now(), updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error archiving card: %v", err)
	}
	return compactAfterRemoval(ctx, tx, cardScope(columnID), position)
}

// Restore clears the archival flag and appends the card at the end of
// its column's live cards, not back into its original slot.
func (r *cardRepository) Restore(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return restoreCardTx(ctx, tx, id)
	})
}

func restoreCardTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var columnID uuid.UUID
	var archivedAt sql.NullTime
	err := tx.QueryRowContext(ctx,
		`SELECT column_id, archived_at FROM kanban_cards WHERE id = $1 FOR UPDATE`,
		id).Scan(&columnID, &archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error locking card: %v", err)
	}
	if !archivedAt.Valid {
		return nil
	}

	// Serialize the append against other restores and creates into the
	// same column.
	if err := lockColumn(ctx, tx, columnID); err != nil {
		return err
	}
	position, err := nextPosition(ctx, tx, cardScope(columnID))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE kanban_cards SET archived_at = NULL, position = $2, updated_at = now() WHERE id = $1`,
		id, position)
	if err != nil {
		return fmt.Errorf("error restoring card: %v", err)
	}
	return nil
}

func (r *cardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kanban_cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting card: %v", err)
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

// Move relocates the card to (toColumnID, position). The source card
// row is locked first, then the destination column through the WIP
// check. Gap close and gap open both happen before the card row is
// rewritten so a uniqueness constraint on (column_id, position) would
// never trip mid-flight.
func (r *cardRepository) Move(ctx context.Context, id uuid.UUID, toColumnID uuid.UUID, position int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var fromColumnID uuid.UUID
		var oldPosition int
		var archivedAt sql.NullTime
		err := tx.QueryRowContext(ctx,
			`SELECT column_id, position, archived_at FROM kanban_cards WHERE id = $1 FOR UPDATE`,
			id).Scan(&fromColumnID, &oldPosition, &archivedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error locking card: %v", err)
		}
		if archivedAt.Valid {
			return ErrNotFound
		}
		if fromColumnID == toColumnID && oldPosition == position {
			return nil
		}

		// The moving card is counted on top of the current occupancy
		// even when it already lives in the destination column.
		if _, err := checkAdmission(ctx, tx, toColumnID, 1); err != nil {
			return err
		}

		if err := compactAfterRemoval(ctx, tx, cardScope(fromColumnID), oldPosition); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE kanban_cards SET position = position + 1 WHERE column_id = $1 AND position >= $2 AND archived_at IS NULL AND id <> $3`,
			toColumnID, position, id)
		if err != nil {
			return fmt.Errorf("error opening gap: %v", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE kanban_cards SET column_id = $2, position = $3, updated_at = now() WHERE id = $1`,
			id, toColumnID, position)
		if err != nil {
			return fmt.Errorf("error moving card: %v", err)
		}
		return nil
	})
}

func (r *cardRepository) Reorder(ctx context.Context, columnID uuid.UUID, orderedIDs []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return applyExplicitOrder(ctx, tx, cardScope(columnID), orderedIDs)
	})
}

func (r *cardRepository) ListArchived(ctx context.Context, projectID uuid.UUID) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM kanban_cards WHERE project_id = $1 AND archived_at IS NOT NULL ORDER BY archived_at DESC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying archived cards: %v", err)
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		var card models.Card
		if err := scanCard(rows, &card); err != nil {
			return nil, fmt.Errorf("error scanning card: %v", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %v", err)
	}
	return cards, nil
}
