package server

import (
	"planr/internal/database/dto"
	"planr/internal/database/models"
	"planr/internal/database/repositories"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) getChecklists(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	repo := repositories.NewChecklistRepository(s.db.DB())
	checklists, err := repo.GetByCardID(c.Context(), cardID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"checklists": checklists})
}

func (s *FiberServer) createChecklist(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	body := dto.CreateChecklistRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "title is required"})
	}
	checklist := models.Checklist{CardID: cardID, Title: body.Title}
	repo := repositories.NewChecklistRepository(s.db.DB())
	if err := repo.Create(c.Context(), &checklist); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"checklist": checklist})
}

func (s *FiberServer) updateChecklist(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	checklistID, ok := parseID(c, "checklistId")
	if !ok {
		return nil
	}
	body := dto.UpdateChecklistRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewChecklistRepository(s.db.DB())
	checklist, err := repo.Update(c.Context(), checklistID, body)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"checklist": checklist})
}

func (s *FiberServer) deleteChecklist(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	checklistID, ok := parseID(c, "checklistId")
	if !ok {
		return nil
	}
	repo := repositories.NewChecklistRepository(s.db.DB())
	if err := repo.Delete(c.Context(), checklistID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) reorderChecklists(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	body := dto.ReorderRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewChecklistRepository(s.db.DB())
	if err := repo.Reorder(c.Context(), cardID, body.OrderedIDs); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) createChecklistItem(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	checklistID, ok := parseID(c, "checklistId")
	if !ok {
		return nil
	}
	body := dto.CreateChecklistItemRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "title is required"})
	}
	item := models.ChecklistItem{ChecklistID: checklistID, Title: body.Title}
	repo := repositories.NewChecklistRepository(s.db.DB())
	if err := repo.CreateItem(c.Context(), &item); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

func (s *FiberServer) updateChecklistItem(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return nil
	}
	body := dto.UpdateChecklistItemRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewChecklistRepository(s.db.DB())
	item, err := repo.UpdateItem(c.Context(), itemID, body)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"item": item})
}

func (s *FiberServer) deleteChecklistItem(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return nil
	}
	repo := repositories.NewChecklistRepository(s.db.DB())
	if err := repo.DeleteItem(c.Context(), itemID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) reorderChecklistItems(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	checklistID, ok := parseID(c, "checklistId")
	if !ok {
		return nil
	}
	body := dto.ReorderRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewChecklistRepository(s.db.DB())
	if err := repo.ReorderItems(c.Context(), checklistID, body.OrderedIDs); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) promoteChecklistItem(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return nil
	}
	repo := repositories.NewChecklistRepository(s.db.DB())
	card, err := repo.PromoteItem(c.Context(), itemID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"card": card})
}
