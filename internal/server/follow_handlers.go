package server

import (
	"github.com/gofiber/fiber/v2"
)

// handleFollow subscribes the caller to an author's posts. Repeats and
// self-follows succeed without effect.
func (s *Server) handleFollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.followService.Follow(c.UserContext(), currentUserID(c), username); err != nil {
		return respondError(c, err)
	}
	following, err := s.followService.IsFollowing(c.UserContext(), currentUserID(c), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// handleUnfollow removes the caller's subscription to an author.
func (s *Server) handleUnfollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.followService.Unfollow(c.UserContext(), currentUserID(c), username); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}
