package server

import (
	"planr/internal/database/dto"
	"planr/internal/database/models"
	"planr/internal/database/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *FiberServer) createLabel(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.LabelRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Name == nil || body.Color == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name and color are required"})
	}
	label := models.Label{ProjectID: projectID, Name: *body.Name, Color: *body.Color}
	repo := repositories.NewLabelRepository(s.db.DB())
	if err := repo.Create(c.Context(), &label); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"label": label})
}

func (s *FiberServer) listLabels(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	repo := repositories.NewLabelRepository(s.db.DB())
	labels, err := repo.GetByProjectID(c.Context(), projectID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"labels": labels})
}

func (s *FiberServer) updateLabel(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	labelID, ok := parseID(c, "labelId")
	if !ok {
		return nil
	}
	body := dto.LabelRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewLabelRepository(s.db.DB())
	label, err := repo.Update(c.Context(), labelID, body.Name, body.Color)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"label": label})
}

func (s *FiberServer) deleteLabel(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	labelID, ok := parseID(c, "labelId")
	if !ok {
		return nil
	}
	repo := repositories.NewLabelRepository(s.db.DB())
	if err := repo.Delete(c.Context(), labelID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) attachLabel(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	labelID, ok := parseID(c, "labelId")
	if !ok {
		return nil
	}
	repo := repositories.NewLabelRepository(s.db.DB())
	if err := repo.AttachToCard(c.Context(), cardID, labelID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) detachLabel(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	labelID, ok := parseID(c, "labelId")
	if !ok {
		return nil
	}
	repo := repositories.NewLabelRepository(s.db.DB())
	if err := repo.DetachFromCard(c.Context(), cardID, labelID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) addAssignee(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return nil
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.BulkAssign(c.Context(), projectID, []uuid.UUID{cardID}, userID, true); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) removeAssignee(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return nil
	}
	repo := repositories.NewCardRepository(s.db.DB())
	if err := repo.BulkAssign(c.Context(), projectID, []uuid.UUID{cardID}, userID, false); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) createComment(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	body := dto.CommentRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "comment body is required"})
	}
	comment := models.Comment{CardID: cardID, AuthorID: user.ID, Body: body.Body}
	repo := repositories.NewCommentRepository(s.db.DB())
	if err := repo.Create(c.Context(), &comment); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

func (s *FiberServer) listComments(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	repo := repositories.NewCommentRepository(s.db.DB())
	comments, err := repo.GetByCardID(c.Context(), cardID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

func (s *FiberServer) updateComment(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return nil
	}
	body := dto.CommentRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCommentRepository(s.db.DB())
	comment, err := repo.Update(c.Context(), commentID, body.Body)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"comment": comment})
}

func (s *FiberServer) deleteComment(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return nil
	}
	repo := repositories.NewCommentRepository(s.db.DB())
	if err := repo.Delete(c.Context(), commentID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) listActivity(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	repo := repositories.NewActivityRepository(s.db.DB())
	activity, err := repo.GetByCardID(c.Context(), cardID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"activity": activity})
}

func (s *FiberServer) createCustomField(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	body := dto.CustomFieldDefRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if body.Name == nil || body.Type == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name and type are required"})
	}
	def := models.CustomFieldDef{ProjectID: projectID, Name: *body.Name, Type: *body.Type, Options: body.Options}
	if body.Required != nil {
		def.Required = *body.Required
	}
	repo := repositories.NewCustomFieldRepository(s.db.DB())
	if err := repo.CreateDef(c.Context(), &def); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"field": def})
}

func (s *FiberServer) listCustomFields(c *fiber.Ctx) error {
	user, projectID, err := s.projectMember(c)
	if user == nil {
		return err
	}
	repo := repositories.NewCustomFieldRepository(s.db.DB())
	fields, err := repo.GetDefsByProjectID(c.Context(), projectID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"fields": fields})
}

func (s *FiberServer) updateCustomField(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	fieldID, ok := parseID(c, "fieldId")
	if !ok {
		return nil
	}
	body := dto.CustomFieldDefRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCustomFieldRepository(s.db.DB())
	field, err := repo.UpdateDef(c.Context(), fieldID, body)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"field": field})
}

func (s *FiberServer) deleteCustomField(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	fieldID, ok := parseID(c, "fieldId")
	if !ok {
		return nil
	}
	repo := repositories.NewCustomFieldRepository(s.db.DB())
	if err := repo.DeleteDef(c.Context(), fieldID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *FiberServer) setCustomFieldValue(c *fiber.Ctx) error {
	user, _, err := s.projectMember(c)
	if user == nil {
		return err
	}
	cardID, ok := parseID(c, "cardId")
	if !ok {
		return nil
	}
	fieldID, ok := parseID(c, "fieldId")
	if !ok {
		return nil
	}
	body := dto.CustomFieldValueRequest{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	repo := repositories.NewCustomFieldRepository(s.db.DB())
	value, err := repo.UpsertValue(c.Context(), cardID, fieldID, body.Value)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"value": value})
}
