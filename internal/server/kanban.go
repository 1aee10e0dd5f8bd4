package server

import (
	"planr/internal/database/dto"
	"planr/internal/database/models"
	"planr/internal/database/repositories"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) getBoard(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	repo := repositories.NewBoardRepository(s.db.DB())
	board, err := repo.ListBoard(c.Context(), projectID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"board": board})
}

func (s *FiberServer) createColumn(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.CreateColumnRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "column name is required"})
	}
	column := models.Column{ProjectID: projectID, Name: body.Name}
	if body.Color != nil {
		column.Color = *body.Color
	}
	repo := repositories.NewColumnRepository(s.db.DB())
	if err := repo.Create(c.Context(), &column); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"column": column})
}

func (s *FiberServer) updateColumn(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	columnID, ok := parseID(c, "columnId")
	if !ok {
		return nil
	}
	body := dto.UpdateColumnRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewColumnRepository(s.db.DB())
	column, err := repo.Update(c.Context(), columnID, body)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"column": column})
}

func (s *FiberServer) deleteColumn(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	columnID, ok := parseID(c, "columnId")
	if !ok {
		return nil
	}
	repo := repositories.NewColumnRepository(s.db.DB())
	if err := repo.Delete(c.Context(), columnID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) archiveColumn(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	columnID, ok := parseID(c, "columnId")
	if !ok {
		return nil
	}
	repo := repositories.NewColumnRepository(s.db.DB())
	if err := repo.Archive(c.Context(), columnID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) restoreColumn(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	columnID, ok := parseID(c, "columnId")
	if !ok {
		return nil
	}
	repo := repositories.NewColumnRepository(s.db.DB())
	if err := repo.Restore(c.Context(), columnID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) reorderColumns(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.ReorderRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewColumnRepository(s.db.DB())
	if err := repo.Reorder(c.Context(), projectID, body.OrderedIDs); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) listArchivedColumns(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	repo := repositories.NewColumnRepository(s.db.DB())
	columns, err := repo.ListArchived(c.Context(), projectID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"columns": columns})
}
