package server

import (
	"errors"
	"os"
	"time"

	"planr/internal/database/dto"
	"planr/internal/database/models"
	"planr/internal/database/repositories"
	"planr/internal/utils"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Post("/login", s.login)
	s.App.Post("/register", s.registerUser)
	s.App.Get("/health", s.healthHandler)

	s.App.Use(jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: jwtSecret},
	}))

	s.App.Post("/projects", s.createProject)
	s.App.Get("/projects", s.listProjects)
	s.App.Get("/projects/:projectId", s.getProject)
	s.App.Put("/projects/:projectId", s.updateProject)
	s.App.Delete("/projects/:projectId", s.deleteProject)
	s.App.Post("/projects/:projectId/members", s.addMember)
	s.App.Delete("/projects/:projectId/members/:userId", s.removeMember)

	s.App.Get("/projects/:projectId/kanban", s.getBoard)

	s.App.Post("/projects/:projectId/kanban/columns", s.createColumn)
	s.App.Put("/projects/:projectId/kanban/columns/reorder", s.reorderColumns)
	s.App.Get("/projects/:projectId/kanban/columns/archived", s.listArchivedColumns)
	s.App.Patch("/projects/:projectId/kanban/columns/:columnId", s.updateColumn)
	s.App.Delete("/projects/:projectId/kanban/columns/:columnId", s.deleteColumn)
	s.App.Post("/projects/:projectId/kanban/columns/:columnId/archive", s.archiveColumn)
	s.App.Post("/projects/:projectId/kanban/columns/:columnId/restore", s.restoreColumn)

	s.App.Post("/projects/:projectId/kanban/columns/:columnId/cards", s.createCard)
	s.App.Put("/projects/:projectId/kanban/columns/:columnId/cards/reorder", s.reorderCards)
	s.App.Get("/projects/:projectId/kanban/cards/archived", s.listArchivedCards)

	// Bulk routes sit under /cards/bulk and must be registered before
	// the :cardId routes so "bulk" is never taken for a card id.
	s.App.Post("/projects/:projectId/kanban/cards/bulk/archive", s.bulkArchiveCards)
	s.App.Post("/projects/:projectId/kanban/cards/bulk/restore", s.bulkRestoreCards)
	s.App.Post("/projects/:projectId/kanban/cards/bulk/move", s.bulkMoveCards)
	s.App.Post("/projects/:projectId/kanban/cards/bulk/assign", s.bulkAssignCards)
	s.App.Post("/projects/:projectId/kanban/cards/bulk/label", s.bulkLabelCards)

	s.App.Get("/projects/:projectId/kanban/cards/:cardId", s.getCardDetails)
	s.App.Patch("/projects/:projectId/kanban/cards/:cardId", s.updateCard)
	s.App.Delete("/projects/:projectId/kanban/cards/:cardId", s.deleteCard)
	s.App.Post("/projects/:projectId/kanban/cards/:cardId/archive", s.archiveCard)
	s.App.Post("/projects/:projectId/kanban/cards/:cardId/restore", s.restoreCard)
	s.App.Post("/projects/:projectId/kanban/cards/:cardId/move", s.moveCard)

	s.App.Get("/projects/:projectId/kanban/cards/:cardId/checklists", s.getChecklists)
	s.App.Post("/projects/:projectId/kanban/cards/:cardId/checklists", s.createChecklist)
	s.App.Put("/projects/:projectId/kanban/cards/:cardId/checklists/reorder", s.reorderChecklists)
	s.App.Patch("/projects/:projectId/kanban/checklists/:checklistId", s.updateChecklist)
	s.App.Delete("/projects/:projectId/kanban/checklists/:checklistId", s.deleteChecklist)
	s.App.Post("/projects/:projectId/kanban/checklists/:checklistId/items", s.createChecklistItem)
	s.App.Put("/projects/:projectId/kanban/checklists/:checklistId/items/reorder", s.reorderChecklistItems)
	s.App.Patch("/projects/:projectId/kanban/items/:itemId", s.updateChecklistItem)
	s.App.Delete("/projects/:projectId/kanban/items/:itemId", s.deleteChecklistItem)
	s.App.Post("/projects/:projectId/kanban/items/:itemId/promote", s.promoteChecklistItem)

	s.App.Post("/projects/:projectId/kanban/labels", s.createLabel)
	s.App.Get("/projects/:projectId/kanban/labels", s.listLabels)
	s.App.Patch("/projects/:projectId/kanban/labels/:labelId", s.updateLabel)
	s.App.Delete("/projects/:projectId/kanban/labels/:labelId", s.deleteLabel)
	s.App.Post("/projects/:projectId/kanban/cards/:cardId/labels/:labelId", s.attachLabel)
	s.App.Delete("/projects/:projectId/kanban/cards/:cardId/labels/:labelId", s.detachLabel)

	s.App.Post("/projects/:projectId/kanban/cards/:cardId/assignees/:userId", s.addAssignee)
	s.App.Delete("/projects/:projectId/kanban/cards/:cardId/assignees/:userId", s.removeAssignee)

	s.App.Post("/projects/:projectId/kanban/cards/:cardId/comments", s.createComment)
	s.App.Get("/projects/:projectId/kanban/cards/:cardId/comments", s.listComments)
	s.App.Patch("/projects/:projectId/kanban/comments/:commentId", s.updateComment)
	s.App.Delete("/projects/:projectId/kanban/comments/:commentId", s.deleteComment)

	s.App.Get("/projects/:projectId/kanban/cards/:cardId/activity", s.listActivity)

	s.App.Post("/projects/:projectId/kanban/fields", s.createCustomField)
	s.App.Get("/projects/:projectId/kanban/fields", s.listCustomFields)
	s.App.Patch("/projects/:projectId/kanban/fields/:fieldId", s.updateCustomField)
	s.App.Delete("/projects/:projectId/kanban/fields/:fieldId", s.deleteCustomField)
	s.App.Put("/projects/:projectId/kanban/cards/:cardId/fields/:fieldId", s.setCustomFieldValue)
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	return c.JSON(s.db.Health())
}

func (s *FiberServer) login(c *fiber.Ctx) error {
	credentials := dto.LoginCredentials{}
	if err := c.BodyParser(&credentials); err != nil {
		return err
	}
	repo := repositories.NewUserRepository(s.db.DB())
	user, err := repo.GetByEmail(c.Context(), credentials.Email)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	if !utils.CheckPasswordHash(credentials.Password, user.Password) {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	claims := jwt.MapClaims{
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour * 72).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(jwtSecret)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"token": t})
}

func (s *FiberServer) registerUser(c *fiber.Ctx) error {
	user := models.User{}
	if err := c.BodyParser(&user); err != nil {
		return err
	}
	var err error
	user.Password, err = utils.HashPassword(user.Password)
	if err != nil {
		return err
	}
	repo := repositories.NewUserRepository(s.db.DB())
	if err := repo.Create(c.Context(), &user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "created user successfully"})
}

// currentUser resolves the authenticated user from the JWT claims.
func (s *FiberServer) currentUser(c *fiber.Ctx) (*models.User, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	email := claims["email"].(string)
	repo := repositories.NewUserRepository(s.db.DB())
	return repo.GetByEmail(c.Context(), email)
}

// projectMember parses the projectId param and checks the caller's
// membership. When it returns a nil user the response has already been
// written and the handler returns the accompanying error as-is.
func (s *FiberServer) projectMember(c *fiber.Ctx) (*models.User, uuid.UUID, error) {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return nil, uuid.Nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid project id"})
	}
	user, err := s.currentUser(c)
	if err != nil {
		return nil, uuid.Nil, c.SendStatus(fiber.StatusUnauthorized)
	}
	repo := repositories.NewProjectRepository(s.db.DB())
	if _, err := repo.GetMembership(c.Context(), projectID, user.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, uuid.Nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
		}
		return nil, uuid.Nil, s.fail(c, err)
	}
	return user, projectID, nil
}

// fail maps repository sentinels onto HTTP statuses. Everything that is
// not a typed condition stays a generic 500 so internals do not leak.
func (s *FiberServer) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	case errors.Is(err, repositories.ErrWipLimitExceeded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "wip limit exceeded"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}

// parseID parses a uuid route param. On a malformed id it writes the
// 400 response itself and reports false.
func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = c.Status(fiber.ErrBadRequest.Code).JSON(fiber.Map{"message": "invalid uid"})
		return uuid.Nil, false
	}
	return id, true
}
