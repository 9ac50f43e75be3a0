package server

import (
	"strings"

	"plume/internal/cache"
	"plume/internal/models"

	"github.com/gofiber/fiber/v2"
)

type groupForm struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// handleCreateGroup creates a new group. Groups only come from administrators.
func (s *Server) handleCreateGroup(c *fiber.Ctx) error {
	var form groupForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	form.Title = strings.TrimSpace(form.Title)
	form.Slug = strings.TrimSpace(strings.ToLower(form.Slug))
	if form.Title == "" || form.Slug == "" {
		return respondError(c, models.NewValidationError("Title and slug are required"))
	}

	if _, err := s.groupRepo.GetBySlug(c.UserContext(), form.Slug); err == nil {
		return respondError(c, models.NewValidationError("Slug already in use"))
	} else if !models.IsNotFound(err) {
		return respondError(c, err)
	}

	group := &models.Group{
		Title:       form.Title,
		Slug:        form.Slug,
		Description: form.Description,
	}
	if err := s.groupRepo.Create(c.UserContext(), group); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// handleDeleteGroup removes a group. Posts in it survive and become ungrouped.
func (s *Server) handleDeleteGroup(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := s.groupRepo.GetByID(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	if err := s.groupRepo.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleClearCache flushes cached feed pages. With a `key` query parameter it
// drops just that page, otherwise every feed page goes.
func (s *Server) handleClearCache(c *fiber.Ctx) error {
	if key := c.Query("key"); key != "" {
		cache.Invalidate(c.UserContext(), key)
		return c.JSON(fiber.Map{"status": "cleared", "key": key})
	}
	if err := s.feedService.ClearCache(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "cleared"})
}
