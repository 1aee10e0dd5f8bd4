package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"planr/internal/database/dto"
	"planr/internal/database/models"
	"planr/internal/database/repositories"

	"github.com/google/uuid"
)

func TestCreateColumnAppends(t *testing.T) {
	project, _ := newTestProject(t)

	a := newTestColumn(t, project.ID, nil)
	b := newTestColumn(t, project.ID, nil)

	if a.Position != 0 || b.Position != 1 {
		t.Fatalf("expected positions 0,1, got %d,%d", a.Position, b.Position)
	}
	if a.Color == "" {
		t.Fatal("expected a default color")
	}
	assertOrder(t, liveColumnOrder(t, project.ID), []uuid.UUID{a.ID, b.ID})
}

func TestUpdateColumnWipLimit(t *testing.T) {
	project, _ := newTestProject(t)
	column := newTestColumn(t, project.ID, nil)

	repo := repositories.NewColumnRepository(testDB)
	updated, err := repo.Update(context.Background(), column.ID, dto.UpdateColumnRequest{WipLimit: intPtr(3)})
	if err != nil {
		t.Fatalf("updating column: %v", err)
	}
	if updated.WipLimit == nil || *updated.WipLimit != 3 {
		t.Fatalf("expected wip limit 3, got %v", updated.WipLimit)
	}
	if updated.Name != column.Name {
		t.Fatalf("expected name to survive, got %q", updated.Name)
	}

	updated, err = repo.Update(context.Background(), column.ID, dto.UpdateColumnRequest{ClearWipLimit: true})
	if err != nil {
		t.Fatalf("clearing wip limit: %v", err)
	}
	if updated.WipLimit != nil {
		t.Fatalf("expected wip limit to be cleared, got %d", *updated.WipLimit)
	}
}

func TestArchiveColumnCascades(t *testing.T) {
	project, _ := newTestProject(t)
	first := newTestColumn(t, project.ID, nil)
	second := newTestColumn(t, project.ID, nil)
	third := newTestColumn(t, project.ID, nil)

	a := newTestCard(t, second.ID, project.ID, "a")
	b := newTestCard(t, second.ID, project.ID, "b")

	repo := repositories.NewColumnRepository(testDB)
	if err := repo.Archive(context.Background(), second.ID); err != nil {
		t.Fatalf("archiving column: %v", err)
	}

	assertOrder(t, liveColumnOrder(t, project.ID), []uuid.UUID{first.ID, third.ID})
	if got := liveCardOrder(t, second.ID); len(got) != 0 {
		t.Fatalf("expected no live cards in archived column, got %d", len(got))
	}

	archived, err := repo.ListArchived(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("listing archived columns: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != second.ID {
		t.Fatalf("expected archived list to hold %s", second.ID)
	}

	// Restore appends the column at the end and revives its own cards
	// in their old slots.
	if err := repo.Restore(context.Background(), second.ID); err != nil {
		t.Fatalf("restoring column: %v", err)
	}
	assertOrder(t, liveColumnOrder(t, project.ID), []uuid.UUID{first.ID, third.ID, second.ID})
	assertOrder(t, liveCardOrder(t, second.ID), []uuid.UUID{a.ID, b.ID})
}

func TestArchiveColumnIdempotent(t *testing.T) {
	project, _ := newTestProject(t)
	column := newTestColumn(t, project.ID, nil)

	repo := repositories.NewColumnRepository(testDB)
	if err := repo.Archive(context.Background(), column.ID); err != nil {
		t.Fatalf("archiving column: %v", err)
	}
	if err := repo.Archive(context.Background(), column.ID); err != nil {
		t.Fatalf("expected second archive to be a no-op, got %v", err)
	}
	if err := repo.Restore(context.Background(), column.ID); err != nil {
		t.Fatalf("restoring column: %v", err)
	}
	if err := repo.Restore(context.Background(), column.ID); err != nil {
		t.Fatalf("expected second restore to be a no-op, got %v", err)
	}
}

func TestReorderColumns(t *testing.T) {
	project, _ := newTestProject(t)
	a := newTestColumn(t, project.ID, nil)
	b := newTestColumn(t, project.ID, nil)
	c := newTestColumn(t, project.ID, nil)

	repo := repositories.NewColumnRepository(testDB)
	if err := repo.Reorder(context.Background(), project.ID, []uuid.UUID{b.ID, c.ID, a.ID}); err != nil {
		t.Fatalf("reordering columns: %v", err)
	}
	assertOrder(t, liveColumnOrder(t, project.ID), []uuid.UUID{b.ID, c.ID, a.ID})
}

// Column creates append into the project scope, so concurrent creates
// serialize on the project row lock instead of double-claiming the
// same MAX(position)+1.
func TestCreateColumnsConcurrentlyStayDense(t *testing.T) {
	project, _ := newTestProject(t)

	repo := repositories.NewColumnRepository(testDB)
	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			column := &models.Column{ProjectID: project.ID, Name: fmt.Sprintf("col-%d", i)}
			errs <- repo.Create(context.Background(), column)
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("creating column: %v", err)
		}
	}

	if got := liveColumnOrder(t, project.ID); len(got) != n {
		t.Fatalf("expected %d live columns, got %d", n, len(got))
	}
}

// A card archived on its own was compacted out of the column before the
// column itself went away; restoring the column must not resurrect it
// into a slot a surviving card now occupies.
func TestRestoreColumnKeepsEarlierArchivedCards(t *testing.T) {
	project, _ := newTestProject(t)
	column := newTestColumn(t, project.ID, nil)

	a := newTestCard(t, column.ID, project.ID, "a")
	b := newTestCard(t, column.ID, project.ID, "b")
	c := newTestCard(t, column.ID, project.ID, "c")

	cardRepo := repositories.NewCardRepository(testDB)
	if err := cardRepo.Archive(context.Background(), b.ID); err != nil {
		t.Fatalf("archiving card: %v", err)
	}

	repo := repositories.NewColumnRepository(testDB)
	if err := repo.Archive(context.Background(), column.ID); err != nil {
		t.Fatalf("archiving column: %v", err)
	}
	if err := repo.Restore(context.Background(), column.ID); err != nil {
		t.Fatalf("restoring column: %v", err)
	}

	assertOrder(t, liveCardOrder(t, column.ID), []uuid.UUID{a.ID, c.ID})

	archived, err := cardRepo.ListArchived(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("listing archived cards: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != b.ID {
		t.Fatalf("expected only %s to remain archived", b.ID)
	}
}

func TestDeleteColumnNotFound(t *testing.T) {
	repo := repositories.NewColumnRepository(testDB)
	err := repo.Delete(context.Background(), uuid.New())
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
