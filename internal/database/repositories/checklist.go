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

type ChecklistRepository interface {
	GetByCardID(ctx context.Context, cardID uuid.UUID) ([]models.ChecklistWithItems, error)
	Create(ctx context.Context, checklist *models.Checklist) error
	Update(ctx context.Context, id uuid.UUID, updates dto.UpdateChecklistRequest) (*models.Checklist, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, cardID uuid.UUID, orderedIDs []uuid.UUID) error

	CreateItem(ctx context.Context, item *models.ChecklistItem) error
	UpdateItem(ctx context.Context, id uuid.UUID, updates dto.UpdateChecklistItemRequest) (*models.ChecklistItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ReorderItems(ctx context.Context, checklistID uuid.UUID, orderedIDs []uuid.UUID) error
	PromoteItem(ctx context.Context, itemID uuid.UUID) (*models.Card, error)
}

type checklistRepository struct {
	db *sql.DB
}

func NewChecklistRepository(db *sql.DB) ChecklistRepository {
	return &checklistRepository{db: db}
}

const checklistColumns = `id, card_id, title, position, created_at, updated_at`
const checklistItemColumns = `id, checklist_id, title, position, done_at, assignee_id, due_date, created_at, updated_at`

func scanChecklist(row interface{ Scan(...any) error }, c *models.Checklist) error {
	return row.Scan(&c.ID, &c.CardID, &c.Title, &c.Position, &c.CreatedAt, &c.UpdatedAt)
}

func scanChecklistItem(row interface{ Scan(...any) error }, i *models.ChecklistItem) error {
	return row.Scan(&i.ID, &i.ChecklistID, &i.Title, &i.Position, &i.DoneAt,
		&i.AssigneeID, &i.DueDate, &i.CreatedAt, &i.UpdatedAt)
}

// GetByCardID loads the card's checklists with their items, both in
// position order.
func (r *checklistRepository) GetByCardID(ctx context.Context, cardID uuid.UUID) ([]models.ChecklistWithItems, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+checklistColumns+` FROM kanban_checklists WHERE card_id = $1 ORDER BY position ASC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("error querying checklists: %v", err)
	}
	defer rows.Close()

	checklists := []models.ChecklistWithItems{}
	for rows.Next() {
		var checklist models.Checklist
		if err := scanChecklist(rows, &checklist); err != nil {
			return nil, fmt.Errorf("error scanning checklist: %v", err)
		}
		checklists = append(checklists, models.ChecklistWithItems{Checklist: checklist, Items: []models.ChecklistItem{}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklists: %v", err)
	}

	itemRows, err := r.db.QueryContext(ctx,
		`SELECT `+checklistItemColumns+` FROM kanban_checklist_items
		 WHERE checklist_id IN (SELECT id FROM kanban_checklists WHERE card_id = $1)
		 ORDER BY position ASC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("error querying checklist items: %v", err)
	}
	defer itemRows.Close()

	byChecklist := make(map[uuid.UUID]int, len(checklists))
	for i := range checklists {
		byChecklist[checklists[i].ID] = i
	}
	for itemRows.Next() {
		var item models.ChecklistItem
		if err := scanChecklistItem(itemRows, &item); err != nil {
			return nil, fmt.Errorf("error scanning checklist item: %v", err)
		}
		if i, ok := byChecklist[item.ChecklistID]; ok {
			checklists[i].Items = append(checklists[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist items: %v", err)
	}
	return checklists, nil
}

func (r *checklistRepository) Create(ctx context.Context, checklist *models.Checklist) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		// The card row lock serializes concurrent appends into the
		// card's checklist scope.
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM kanban_cards WHERE id = $1 FOR UPDATE`, checklist.CardID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error locking card: %v", err)
		}

		position, err := nextPosition(ctx, tx, checklistScope(checklist.CardID))
		if err != nil {
			return err
		}
		query := `
			INSERT INTO kanban_checklists (card_id, title, position)
			VALUES ($1, $2, $3)
			RETURNING id, position, created_at, updated_at`
		err = tx.QueryRowContext(ctx, query, checklist.CardID, checklist.Title, position).
			Scan(&checklist.ID, &checklist.Position, &checklist.CreatedAt, &checklist.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error creating checklist: %v", err)
		}
		return nil
	})
}

func (r *checklistRepository) Update(ctx context.Context, id uuid.UUID, updates dto.UpdateChecklistRequest) (*models.Checklist, error) {
	checklist := models.Checklist{}
	query := `
		UPDATE kanban_checklists
		SET title = COALESCE($2, title), updated_at = now()
		WHERE id = $1
		RETURNING ` + checklistColumns
	err := scanChecklist(r.db.QueryRowContext(ctx, query, id, updates.Title), &checklist)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating checklist: %v", err)
	}
	return &checklist, nil
}

func (r *checklistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kanban_checklists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting checklist: %v", err)
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

func (r *checklistRepository) Reorder(ctx context.Context, cardID uuid.UUID, orderedIDs []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return applyExplicitOrder(ctx, tx, checklistScope(cardID), orderedIDs)
	})
}

func (r *checklistRepository) CreateItem(ctx context.Context, item *models.ChecklistItem) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM kanban_checklists WHERE id = $1 FOR UPDATE`, item.ChecklistID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error locking checklist: %v", err)
		}

		position, err := nextPosition(ctx, tx, checklistItemScope(item.ChecklistID))
		if err != nil {
			return err
		}
		query := `
			INSERT INTO kanban_checklist_items (checklist_id, title, position, assignee_id, due_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, position, created_at, updated_at`
		err = tx.QueryRowContext(ctx, query, item.ChecklistID, item.Title, position, item.AssigneeID, item.DueDate).
			Scan(&item.ID, &item.Position, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error creating checklist item: %v", err)
		}
		return nil
	})
}

// UpdateItem overwrites the nullable fields with whatever the caller
// sent, matching the detail form's full submit.
func (r *checklistRepository) UpdateItem(ctx context.Context, id uuid.UUID, updates dto.UpdateChecklistItemRequest) (*models.ChecklistItem, error) {
	item := models.ChecklistItem{}
	query := `
		UPDATE kanban_checklist_items
		SET title = COALESCE($2, title),
		    done_at = $3,
		    assignee_id = $4,
		    due_date = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + checklistItemColumns
	err := scanChecklistItem(r.db.QueryRowContext(ctx, query, id, updates.Title,
		updates.DoneAt, updates.AssigneeID, updates.DueDate), &item)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating checklist item: %v", err)
	}
	return &item, nil
}

func (r *checklistRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kanban_checklist_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting checklist item: %v", err)
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

func (r *checklistRepository) ReorderItems(ctx context.Context, checklistID uuid.UUID, orderedIDs []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return applyExplicitOrder(ctx, tx, checklistItemScope(checklistID), orderedIDs)
	})
}

// PromoteItem turns a checklist item into a subtask card of the
// checklist's own card, placed in the same column as that card. The
// item is deleted and its checklist recompacted in the same
// transaction, so a full destination column leaves the checklist
// untouched.
func (r *checklistRepository) PromoteItem(ctx context.Context, itemID uuid.UUID) (*models.Card, error) {
	card := models.Card{}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var checklistID, parentCardID uuid.UUID
		var title string
		var itemPosition int
		err := tx.QueryRowContext(ctx, `
			SELECT i.checklist_id, i.title, i.position, c.card_id
			FROM kanban_checklist_items i
			JOIN kanban_checklists c ON c.id = i.checklist_id
			WHERE i.id = $1
			FOR UPDATE OF i`, itemID).
			Scan(&checklistID, &title, &itemPosition, &parentCardID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error locking checklist item: %v", err)
		}

		var columnID, projectID uuid.UUID
		err = tx.QueryRowContext(ctx,
			`SELECT column_id, project_id FROM kanban_cards WHERE id = $1 FOR UPDATE`,
			parentCardID).Scan(&columnID, &projectID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error locking parent card: %v", err)
		}

		if _, err := checkAdmission(ctx, tx, columnID, 1); err != nil {
			return err
		}

		position, err := nextPosition(ctx, tx, cardScope(columnID))
		if err != nil {
			return err
		}

		err = scanCard(tx.QueryRowContext(ctx, `
			INSERT INTO kanban_cards (column_id, project_id, parent_id, title, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+cardColumns,
			columnID, projectID, parentCardID, title, position), &card)
		if err != nil {
			return fmt.Errorf("error creating subtask: %v", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM kanban_checklist_items WHERE id = $1`, itemID); err != nil {
			return fmt.Errorf("error deleting checklist item: %v", err)
		}
		return compactAfterRemoval(ctx, tx, checklistItemScope(checklistID), itemPosition)
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}
