package server

import (
	"fmt"

	"plume/internal/models"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentForm struct {
	Text string `json:"text"`
}

// handleAddComment appends a comment to a post's thread.
func (s *Server) handleAddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var form commentForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID: postID,
		UserID: currentUserID(c),
		Text:   form.Text,
	})
	if err != nil {
		return respondError(c, err)
	}

	c.Set("Location", fmt.Sprintf("/api/posts/%d", postID))
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// handleDeleteComment removes the caller's own comment.
func (s *Server) handleDeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.commentService.DeleteComment(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
