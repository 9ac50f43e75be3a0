package server

import (
	"github.com/gofiber/fiber/v2"
)

// handleGlobalFeed serves one page of all posts, newest first.
func (s *Server) handleGlobalFeed(c *fiber.Ctx) error {
	page, err := s.feedService.GlobalFeed(c.UserContext(), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// handleGroupFeed serves a group's description and one page of its posts.
func (s *Server) handleGroupFeed(c *fiber.Ctx) error {
	page, err := s.feedService.GroupFeed(c.UserContext(), c.Params("slug"), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// handleProfileFeed serves an author's profile and one page of their posts.
// The follow state reflects the viewer when a bearer token is present.
func (s *Server) handleProfileFeed(c *fiber.Ctx) error {
	page, err := s.feedService.ProfileFeed(c.UserContext(), c.Params("username"), parsePage(c), optionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// handleFollowingFeed serves one page of posts by authors the viewer follows.
func (s *Server) handleFollowingFeed(c *fiber.Ctx) error {
	page, err := s.feedService.FollowingFeed(c.UserContext(), currentUserID(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// handleListGroups lists every group, alphabetically.
func (s *Server) handleListGroups(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}
