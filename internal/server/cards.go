package server

import (
	"planr/internal/database/dto"
	"planr/internal/database/models"
	"planr/internal/database/repositories"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) createCard(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	columnID, ok := parseID(c, "columnId")
	if !ok {
		return nil
	}
	body := dto.CreateCardRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "title is required"})
	}
	card := models.Card{
		ColumnID:    columnID,
		ProjectID:   projectID,
		ParentID:    body.ParentID,
		Title:       body.Title,
		Description: body.Description,
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.Create(c.Context(), &card); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"card": card})
}

func (s *FiberServer) getCardDetails(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	repo := repositories.NewBoardRepository(s.db.DB())
	details, err := repo.GetCardDetails(c.Context(), cardID)
	if err != nil {
		return s.fail(c, err)
	}
	if details == nil || details.ProjectID != projectID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	}
	return c.JSON(fiber.Map{"card": details})
}

func (s *FiberServer) updateCard(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	body := dto.UpdateCardRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCardRepository(s.db.DB())
	card, err := repo.Update(c.Context(), cardID, body)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"card": card})
}

func (s *FiberServer) deleteCard(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.Delete(c.Context(), cardID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) archiveCard(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.Archive(c.Context(), cardID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) restoreCard(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.Restore(c.Context(), cardID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) moveCard(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	body := dto.MoveCardRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.Move(c.Context(), cardID, body.ToColumnID, body.Position); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) reorderCards(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	columnID, ok := parseID(c, "columnId")
	if !ok {
		return nil
	}
	body := dto.ReorderRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.Reorder(c.Context(), columnID, body.OrderedIDs); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) listArchivedCards(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	repo := repositories.NewCardRepository(s.db.DB())
	cards, err := repo.ListArchived(c.Context(), projectID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"cards": cards})
}

func (s *FiberServer) bulkArchiveCards(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.BulkCardsRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.BulkArchive(c.Context(), projectID, body.CardIDs); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) bulkRestoreCards(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.BulkCardsRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.BulkRestore(c.Context(), projectID, body.CardIDs); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) bulkMoveCards(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.BulkMoveRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.BulkMove(c.Context(), projectID, body.CardIDs, body.ToColumnID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) bulkAssignCards(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.BulkAssignRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Action != "add" && body.Action != "remove" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "action must be add or remove"})
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.BulkAssign(c.Context(), projectID, body.CardIDs, body.UserID, body.Action == "add"); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) bulkLabelCards(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.BulkLabelRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Action != "attach" && body.Action != "detach" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "action must be attach or detach"})
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.BulkLabel(c.Context(), projectID, body.CardIDs, body.LabelID, body.Action == "attach"); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
