package server

import (
	"planr/internal/database/dto"
	"planr/internal/database/models"
	"planr/internal/database/repositories"

	"github.com/gofiber/fiber/v2"
)

func (s *FiberServer) createProject(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	body := dto.ProjectRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "project name is required"})
	}
	project := models.Project{Name: body.Name, Description: body.Description}
	repo := repositories.NewProjectRepository(s.db.DB())
	if err := repo.Create(c.Context(), &project, user.ID); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": project})
}

func (s *FiberServer) listProjects(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	repo := repositories.NewProjectRepository(s.db.DB())
	projects, err := repo.ListForUser(c.Context(), user.ID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

func (s *FiberServer) getProject(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	repo := repositories.NewProjectRepository(s.db.DB())
	project, err := repo.GetByID(c.Context(), projectID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"project": project})
}

func (s *FiberServer) updateProject(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.ProjectRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "project name is required"})
	}
	repo := repositories.NewProjectRepository(s.db.DB())
	project, err := repo.Update(c.Context(), projectID, body.Name, body.Description)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"project": project})
}

func (s *FiberServer) deleteProject(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	repo := repositories.NewProjectRepository(s.db.DB())
	if err := repo.Delete(c.Context(), projectID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) addMember(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.AddMemberRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Role == "" {
		body.Role = models.RoleMember
	}
	membership := models.Membership{ProjectID: projectID, UserID: body.UserID, Role: body.Role}
	repo := repositories.NewProjectRepository(s.db.DB())
	if err := repo.AddMember(c.Context(), &membership); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"membership": membership})
}

func (s *FiberServer) removeMember(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return nil
	}
	repo := repositories.NewProjectRepository(s.db.DB())
	if err := repo.RemoveMember(c.Context(), projectID, userID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
