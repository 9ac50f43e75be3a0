package server

import (
	"log/slog"
	"strconv"

	"plume/internal/models"
	"plume/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a numeric path parameter, rejecting anything that is not a
// positive integer.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// parsePage reads the page query parameter leniently; garbage means page 1.
func parsePage(c *fiber.Ctx) int {
	return pagination.ParseNumber(c.Query("page"))
}

// currentUserID returns the authenticated user's ID. It is only valid behind
// AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// optionalUserID returns the viewer's ID, zero when anonymous.
func optionalUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// respondError translates a service error into the matching HTTP response,
// logging only unexpected failures.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusForError(err)
	if status >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed", "error", err, "path", c.Path())
	}
	return models.RespondWithError(c, status, err)
}
