package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"planr/internal/database/models"

	"github.com/google/uuid"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, id uuid.UUID, name string, description *string) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetMembership(ctx context.Context, projectID, userID uuid.UUID) (*models.Membership, error)
	AddMember(ctx context.Context, membership *models.Membership) error
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts the project and its owner's MANAGER membership in one
// transaction.
func (r *projectRepository) Create(ctx context.Context, project *models.Project, ownerID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO projects (name, description)
			VALUES ($1, $2)
			RETURNING id, created_at, updated_at`
		err := tx.QueryRowContext(ctx, query, project.Name, project.Description).
			Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error creating project: %v", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_memberships (project_id, user_id, role) VALUES ($1, $2, $3)`,
			project.ID, ownerID, models.RoleManager)
		if err != nil {
			return fmt.Errorf("error creating membership: %v", err)
		}
		return nil
	})
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project := models.Project{}
	query := `SELECT id, name, description, created_at, updated_at FROM projects WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt, &project.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting project: %v", err)
	}
	return &project, nil
}

func (r *projectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	query := `
		SELECT p.id, p.name, p.description, p.created_at, p.updated_at
		FROM projects p
		INNER JOIN project_memberships pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying projects: %v", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var project models.Project
		err := rows.Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt, &project.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning project: %v", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %v", err)
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, id uuid.UUID, name string, description *string) (*models.Project, error) {
	project := models.Project{}
	query := `
		UPDATE projects
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, id, name, description).
		Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt, &project.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating project: %v", err)
	}
	return &project, nil
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting project: %v", err)
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

func (r *projectRepository) GetMembership(ctx context.Context, projectID, userID uuid.UUID) (*models.Membership, error) {
	membership := models.Membership{}
	query := `SELECT project_id, user_id, role, joined_at FROM project_memberships WHERE project_id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, projectID, userID).
		Scan(&membership.ProjectID, &membership.UserID, &membership.Role, &membership.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting membership: %v", err)
	}
	return &membership, nil
}

func (r *projectRepository) AddMember(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO project_memberships (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING joined_at`
	err := r.db.QueryRowContext(ctx, query, membership.ProjectID, membership.UserID, membership.Role).
		Scan(&membership.JoinedAt)
	if err != nil {
		return fmt.Errorf("error adding member: %v", err)
	}
	return nil
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM project_memberships WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return fmt.Errorf("error removing member: %v", err)
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
