package repositories_test

import (
	"context"
	"testing"

	"planr/internal/database/models"
	"planr/internal/database/repositories"

	"github.com/google/uuid"
)

func TestListBoard(t *testing.T) {
	project, _ := newTestProject(t)
	todo := newTestColumn(t, project.ID, nil)
	done := newTestColumn(t, project.ID, nil)

	a := newTestCard(t, todo.ID, project.ID, "a")
	b := newTestCard(t, todo.ID, project.ID, "b")
	newTestCard(t, done.ID, project.ID, "c")

	cardRepo := repositories.NewCardRepository(testDB)
	if err := cardRepo.Archive(context.Background(), b.ID); err != nil {
		t.Fatalf("archiving card: %v", err)
	}

	repo := repositories.NewBoardRepository(testDB)
	board, err := repo.ListBoard(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("listing board: %v", err)
	}

	if len(board) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(board))
	}
	if board[0].ID != todo.ID || board[1].ID != done.ID {
		t.Fatal("expected columns in position order")
	}
	if len(board[0].Cards) != 1 || board[0].Cards[0].ID != a.ID {
		t.Fatal("expected archived card to be excluded")
	}
	if len(board[1].Cards) != 1 {
		t.Fatalf("expected 1 card in second column, got %d", len(board[1].Cards))
	}
}

func TestGetCardDetails(t *testing.T) {
	project, user := newTestProject(t)
	column := newTestColumn(t, project.ID, nil)
	card := newTestCard(t, column.ID, project.ID, "card")

	checklist := newTestChecklist(t, card.ID, "list")
	newTestChecklistItem(t, checklist.ID, "item")

	label := &models.Label{ProjectID: project.ID, Name: "bug", Color: "#cc0000"}
	labelRepo := repositories.NewLabelRepository(testDB)
	if err := labelRepo.Create(context.Background(), label); err != nil {
		t.Fatalf("creating label: %v", err)
	}
	if err := labelRepo.AttachToCard(context.Background(), card.ID, label.ID); err != nil {
		t.Fatalf("attaching label: %v", err)
	}

	comment := &models.Comment{CardID: card.ID, AuthorID: user.ID, Body: "hello"}
	if err := repositories.NewCommentRepository(testDB).Create(context.Background(), comment); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	subtask := &models.Card{ColumnID: column.ID, ProjectID: project.ID, ParentID: &card.ID, Title: "subtask"}
	if err := repositories.NewCardRepository(testDB).Create(context.Background(), subtask); err != nil {
		t.Fatalf("creating subtask: %v", err)
	}

	repo := repositories.NewBoardRepository(testDB)
	details, err := repo.GetCardDetails(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("reading card details: %v", err)
	}
	if details == nil {
		t.Fatal("expected details, got nil")
	}

	if details.Title != "card" {
		t.Fatalf("expected title %q, got %q", "card", details.Title)
	}
	if len(details.Labels) != 1 || details.Labels[0].ID != label.ID {
		t.Fatal("expected the attached label")
	}
	if len(details.Comments) != 1 || details.Comments[0].Body != "hello" {
		t.Fatal("expected the comment")
	}
	if len(details.Checklists) != 1 || len(details.Checklists[0].Items) != 1 {
		t.Fatal("expected the checklist with its item")
	}
	if len(details.Subtasks) != 1 || details.Subtasks[0].ID != subtask.ID {
		t.Fatal("expected the subtask")
	}
}

func TestGetCardDetailsMissing(t *testing.T) {
	repo := repositories.NewBoardRepository(testDB)
	details, err := repo.GetCardDetails(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected no error for missing card, got %v", err)
	}
	if details != nil {
		t.Fatal("expected nil details for missing card")
	}
}
