package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"planr/internal/database/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type BoardRepository interface {
	ListBoard(ctx context.Context, projectID uuid.UUID) ([]models.BoardColumn, error)
	GetCardDetails(ctx context.Context, cardID uuid.UUID) (*models.CardDetails, error)
}

type boardRepository struct {
	db         *sql.DB
	cards      CardRepository
	checklists ChecklistRepository
	labels     LabelRepository
	comments   CommentRepository
	activity   ActivityRepository
	fields     CustomFieldRepository
}

func NewBoardRepository(db *sql.DB) BoardRepository {
	return &boardRepository{
		db:         db,
		cards:      NewCardRepository(db),
		checklists: NewChecklistRepository(db),
		labels:     NewLabelRepository(db),
		comments:   NewCommentRepository(db),
		activity:   NewActivityRepository(db),
		fields:     NewCustomFieldRepository(db),
	}
}

// ListBoard returns the live columns with their live cards, both in
// position order. Two scoped queries grouped in memory, not a join, so
// column rows are not duplicated per card.
func (r *boardRepository) ListBoard(ctx context.Context, projectID uuid.UUID) ([]models.BoardColumn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columnColumns+` FROM kanban_columns WHERE project_id = $1 AND archived_at IS NULL ORDER BY position ASC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying columns: %v", err)
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

	cardRows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM kanban_cards WHERE project_id = $1 AND archived_at IS NULL ORDER BY position ASC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying cards: %v", err)
	}
	defer cardRows.Close()

	cards := []models.Card{}
	for cardRows.Next() {
		var card models.Card
		if err := scanCard(cardRows, &card); err != nil {
			return nil, fmt.Errorf("error scanning card: %v", err)
		}
		cards = append(cards, card)
	}
	if err := cardRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %v", err)
	}

	return groupBoard(columns, cards), nil
}

// groupBoard buckets cards under their columns, preserving the position
// order of both inputs.
func groupBoard(columns []models.Column, cards []models.Card) []models.BoardColumn {
	board := make([]models.BoardColumn, len(columns))
	index := make(map[uuid.UUID]int, len(columns))
	for i, column := range columns {
		board[i] = models.BoardColumn{Column: column, Cards: []models.Card{}}
		index[column.ID] = i
	}
	for _, card := range cards {
		if i, ok := index[card.ColumnID]; ok {
			board[i].Cards = append(board[i].Cards, card)
		}
	}
	return board
}

// GetCardDetails assembles the full card view. The attachment queries
// are independent reads, so they run concurrently. A missing card
// yields (nil, nil) and the caller decides how to respond.
func (r *boardRepository) GetCardDetails(ctx context.Context, cardID uuid.UUID) (*models.CardDetails, error) {
	card, err := r.cards.GetByID(ctx, cardID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	details := models.CardDetails{Card: *card}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		details.Labels, err = r.labels.GetByCardID(gctx, cardID)
		return err
	})
	g.Go(func() error {
		var err error
		details.Assignees, err = r.getAssignees(gctx, cardID)
		return err
	})
	g.Go(func() error {
		var err error
		details.Comments, err = r.comments.GetByCardID(gctx, cardID)
		return err
	})
	g.Go(func() error {
		var err error
		details.Activity, err = r.activity.GetByCardID(gctx, cardID)
		return err
	})
	g.Go(func() error {
		var err error
		details.Checklists, err = r.checklists.GetByCardID(gctx, cardID)
		return err
	})
	g.Go(func() error {
		var err error
		details.CustomFields, err = r.fields.GetValuesForCard(gctx, cardID)
		return err
	})
	g.Go(func() error {
		var err error
		details.Subtasks, err = r.getSubtasks(gctx, cardID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *boardRepository) getAssignees(ctx context.Context, cardID uuid.UUID) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, u.created_at, u.updated_at
		FROM users u
		JOIN kanban_card_assignees ca ON ca.user_id = u.id
		WHERE ca.card_id = $1`, cardID)
	if err != nil {
		return nil, fmt.Errorf("error querying assignees: %v", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning assignee: %v", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignees: %v", err)
	}
	return users, nil
}

func (r *boardRepository) getSubtasks(ctx context.Context, cardID uuid.UUID) ([]models.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM kanban_cards WHERE parent_id = $1 AND archived_at IS NULL ORDER BY position ASC`,
		cardID)
	if err != nil {
		return nil, fmt.Errorf("error querying subtasks: %v", err)
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		var card models.Card
		if err := scanCard(rows, &card); err != nil {
			return nil, fmt.Errorf("error scanning subtask: %v", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subtasks: %v", err)
	}
	return cards, nil
}
