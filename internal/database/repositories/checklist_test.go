package repositories_test

import (
	"context"
	"errors"
	"testing"

	"planr/internal/database/models"
	"planr/internal/database/repositories"

	"github.com/google/uuid"
)

func newTestChecklist(t *testing.T, cardID uuid.UUID, title string) *models.Checklist {
	t.Helper()
	checklist := &models.Checklist{CardID: cardID, Title: title}
	repo := repositories.NewChecklistRepository(testDB)
	if err := repo.Create(context.Background(), checklist); err != nil {
		t.Fatalf("creating checklist %q: %v", title, err)
	}
	return checklist
}

func newTestChecklistItem(t *testing.T, checklistID uuid.UUID, title string) *models.ChecklistItem {
	t.Helper()
	item := &models.ChecklistItem{ChecklistID: checklistID, Title: title}
	repo := repositories.NewChecklistRepository(testDB)
	if err := repo.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("creating checklist item %q: %v", title, err)
	}
	return item
}

func TestChecklistOrdering(t *testing.T) {
	project, _ := newTestProject(t)
	column := newTestColumn(t, project.ID, nil)
	card := newTestCard(t, column.ID, project.ID, "card")

	first := newTestChecklist(t, card.ID, "first")
	second := newTestChecklist(t, card.ID, "second")
	a := newTestChecklistItem(t, first.ID, "a")
	b := newTestChecklistItem(t, first.ID, "b")

	if first.Position != 0 || second.Position != 1 {
		t.Fatalf("expected checklist positions 0,1, got %d,%d", first.Position, second.Position)
	}
	if a.Position != 0 || b.Position != 1 {
		t.Fatalf("expected item positions 0,1, got %d,%d", a.Position, b.Position)
	}

	repo := repositories.NewChecklistRepository(testDB)
	checklists, err := repo.GetByCardID(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("reading checklists: %v", err)
	}
	if len(checklists) != 2 {
		t.Fatalf("expected 2 checklists, got %d", len(checklists))
	}
	if len(checklists[0].Items) != 2 || checklists[0].Items[0].ID != a.ID {
		t.Fatalf("expected first checklist to hold both items in order")
	}
	if len(checklists[1].Items) != 0 {
		t.Fatalf("expected second checklist to be empty")
	}
}

func TestReorderChecklistItems(t *testing.T) {
	project, _ := newTestProject(t)
	column := newTestColumn(t, project.ID, nil)
	card := newTestCard(t, column.ID, project.ID, "card")
	checklist := newTestChecklist(t, card.ID, "list")

	a := newTestChecklistItem(t, checklist.ID, "a")
	b := newTestChecklistItem(t, checklist.ID, "b")
	c := newTestChecklistItem(t, checklist.ID, "c")

	repo := repositories.NewChecklistRepository(testDB)
	if err := repo.ReorderItems(context.Background(), checklist.ID, []uuid.UUID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reordering items: %v", err)
	}

	checklists, err := repo.GetByCardID(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("reading checklists: %v", err)
	}
	items := checklists[0].Items
	if items[0].ID != c.ID || items[1].ID != a.ID || items[2].ID != b.ID {
		t.Fatalf("expected item order c,a,b")
	}
}

func TestPromoteChecklistItem(t *testing.T) {
	project, _ := newTestProject(t)
	column := newTestColumn(t, project.ID, nil)
	parent := newTestCard(t, column.ID, project.ID, "parent")
	sibling := newTestCard(t, column.ID, project.ID, "sibling")
	checklist := newTestChecklist(t, parent.ID, "list")

	a := newTestChecklistItem(t, checklist.ID, "a")
	b := newTestChecklistItem(t, checklist.ID, "b")
	c := newTestChecklistItem(t, checklist.ID, "c")

	repo := repositories.NewChecklistRepository(testDB)
	promoted, err := repo.PromoteItem(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("promoting item: %v", err)
	}

	if promoted.Title != "b" {
		t.Fatalf("expected promoted card title %q, got %q", "b", promoted.Title)
	}
	if promoted.ParentID == nil || *promoted.ParentID != parent.ID {
		t.Fatalf("expected promoted card to point at %s", parent.ID)
	}
	if promoted.ColumnID != column.ID {
		t.Fatalf("expected promoted card in column %s", column.ID)
	}

	// The new card lands at the end of the parent's column and the
	// remaining items close the gap.
	assertOrder(t, liveCardOrder(t, column.ID), []uuid.UUID{parent.ID, sibling.ID, promoted.ID})

	checklists, err := repo.GetByCardID(context.Background(), parent.ID)
	if err != nil {
		t.Fatalf("reading checklists: %v", err)
	}
	items := checklists[0].Items
	if len(items) != 2 || items[0].ID != a.ID || items[1].ID != c.ID {
		t.Fatalf("expected items a,c after promotion")
	}
	if items[0].Position != 0 || items[1].Position != 1 {
		t.Fatalf("expected item positions 0,1, got %d,%d", items[0].Position, items[1].Position)
	}
}

func TestPromoteChecklistItemWipLimit(t *testing.T) {
	project, _ := newTestProject(t)
	column := newTestColumn(t, project.ID, intPtr(1))
	parent := newTestCard(t, column.ID, project.ID, "parent")
	checklist := newTestChecklist(t, parent.ID, "list")
	item := newTestChecklistItem(t, checklist.ID, "a")

	repo := repositories.NewChecklistRepository(testDB)
	_, err := repo.PromoteItem(context.Background(), item.ID)
	if !errors.Is(err, repositories.ErrWipLimitExceeded) {
		t.Fatalf("expected ErrWipLimitExceeded, got %v", err)
	}

	// Rejection leaves the item where it was.
	checklists, err := repo.GetByCardID(context.Background(), parent.ID)
	if err != nil {
		t.Fatalf("reading checklists: %v", err)
	}
	if len(checklists[0].Items) != 1 || checklists[0].Items[0].ID != item.ID {
		t.Fatalf("expected item to survive rejected promotion")
	}
	assertOrder(t, liveCardOrder(t, column.ID), []uuid.UUID{parent.ID})
}

func TestPromoteChecklistItemNotFound(t *testing.T) {
	repo := repositories.NewChecklistRepository(testDB)
	_, err := repo.PromoteItem(context.Background(), uuid.New())
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
