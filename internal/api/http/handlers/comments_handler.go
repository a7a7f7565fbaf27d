package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/support-desk/internal/api/dto"
	"github.com/crmkit/support-desk/internal/auth"
	"github.com/crmkit/support-desk/internal/service"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// CommentsHandler manages ticket comment endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// Create POST /tickets/:id/comments. The author is the authenticated user.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.Add(c.UserContext(), c.Params("id"), principal.User.ID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromComment(comment)})
}

// ListByTicket GET /tickets/:id/comments. Oldest first.
func (h *CommentsHandler) ListByTicket(c *fiber.Ctx) error {
	comments, err := h.service.ListByTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComments(comments)})
}

// ListByAuthor GET /users/:id/comments. Newest first.
func (h *CommentsHandler) ListByAuthor(c *fiber.Ctx) error {
	comments, err := h.service.ListByAuthor(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComments(comments)})
}

// Update PUT /comments/:id. Only the body is editable.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.Update(c.UserContext(), c.Params("id"), req.Body, req.Version)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromComment(comment)})
}

// Delete DELETE /comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
