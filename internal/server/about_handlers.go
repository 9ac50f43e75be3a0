package server

import (
	"github.com/gofiber/fiber/v2"
)

// Static informational pages.

func (s *Server) handleAboutAuthor(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title": "About the author",
		"body":  "Plume is a small publishing platform for posts, groups and subscriptions, maintained by its contributors.",
	})
}

func (s *Server) handleAboutTech(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title": "Technology",
		"body":  "Built with Go, Fiber, GORM, PostgreSQL and Redis.",
	})
}
