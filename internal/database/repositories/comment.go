package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"planr/internal/database/models"

	"github.com/google/uuid"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByCardID(ctx context.Context, cardID uuid.UUID) ([]models.Comment, error)
	Update(ctx context.Context, id uuid.UUID, body string) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO kanban_comments (card_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, comment.CardID, comment.AuthorID, comment.Body).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating comment: %v", err)
	}
	return nil
}

func (r *commentRepository) GetByCardID(ctx context.Context, cardID uuid.UUID) ([]models.Comment, error) {
	query := `SELECT id, card_id, author_id, body, created_at, updated_at FROM kanban_comments WHERE card_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("error querying comments: %v", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(&comment.ID, &comment.CardID, &comment.AuthorID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment: %v", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %v", err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, id uuid.UUID, body string) (*models.Comment, error) {
	comment := models.Comment{}
	query := `
		UPDATE kanban_comments
		SET body = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, card_id, author_id, body, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, id, body).
		Scan(&comment.ID, &comment.CardID, &comment.AuthorID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating comment: %v", err)
	}
	return &comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kanban_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting comment: %v", err)
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
