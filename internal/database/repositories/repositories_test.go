package repositories_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"testing"
	"time"

	"planr/internal/database"
	"planr/internal/database/models"
	"planr/internal/database/repositories"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *sql.DB

func mustStartPostgresContainer() (func(context.Context) error, error) {
	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase("database"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := fmt.Sprintf("postgres://user:password@%s:%s/database?sslmode=disable", dbHost, dbPort.Port())
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.Migrate(testDB); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := mustStartPostgresContainer()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("could not teardown postgres container: %v", err)
	}
}

// Each test builds its own project so ordering assertions never see
// another test's rows.

func newTestUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password:  "hashed-password",
	}
	repo := repositories.NewUserRepository(testDB)
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return user
}

func newTestProject(t *testing.T) (*models.Project, *models.User) {
	t.Helper()
	user := newTestUser(t)
	project := &models.Project{Name: "Test Project"}
	repo := repositories.NewProjectRepository(testDB)
	if err := repo.Create(context.Background(), project, user.ID); err != nil {
		t.Fatalf("creating project: %v", err)
	}
	return project, user
}

func newTestColumn(t *testing.T, projectID uuid.UUID, wipLimit *int) *models.Column {
	t.Helper()
	column := &models.Column{ProjectID: projectID, Name: "Column", WipLimit: wipLimit}
	repo := repositories.NewColumnRepository(testDB)
	if err := repo.Create(context.Background(), column); err != nil {
		t.Fatalf("creating column: %v", err)
	}
	return column
}

func newTestCard(t *testing.T, columnID, projectID uuid.UUID, title string) *models.Card {
	t.Helper()
	card := &models.Card{ColumnID: columnID, ProjectID: projectID, Title: title}
	repo := repositories.NewCardRepository(testDB)
	if err := repo.Create(context.Background(), card); err != nil {
		t.Fatalf("creating card %q: %v", title, err)
	}
	return card
}

// liveCardOrder returns the ids of the column's live cards by position
// and fails the test if those positions are not exactly 0..n-1.
func liveCardOrder(t *testing.T, columnID uuid.UUID) []uuid.UUID {
	t.Helper()
	rows, err := testDB.Query(
		`SELECT id, position FROM kanban_cards WHERE column_id = $1 AND archived_at IS NULL ORDER BY position`,
		columnID)
	if err != nil {
		t.Fatalf("querying cards: %v", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		var position int
		if err := rows.Scan(&id, &position); err != nil {
			t.Fatalf("scanning card: %v", err)
		}
		if position != len(ids) {
			t.Fatalf("expected position %d, got %d", len(ids), position)
		}
		ids = append(ids, id)
	}
	return ids
}

// liveColumnOrder is liveCardOrder for a project's columns.
func liveColumnOrder(t *testing.T, projectID uuid.UUID) []uuid.UUID {
	t.Helper()
	rows, err := testDB.Query(
		`SELECT id, position FROM kanban_columns WHERE project_id = $1 AND archived_at IS NULL ORDER BY position`,
		projectID)
	if err != nil {
		t.Fatalf("querying columns: %v", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		var position int
		if err := rows.Scan(&id, &position); err != nil {
			t.Fatalf("scanning column: %v", err)
		}
		if position != len(ids) {
			t.Fatalf("expected position %d, got %d", len(ids), position)
		}
		ids = append(ids, id)
	}
	return ids
}

func assertOrder(t *testing.T, got, want []uuid.UUID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %s at index %d, got %s", want[i], i, got[i])
		}
	}
}

func intPtr(n int) *int {
	return &n
}
