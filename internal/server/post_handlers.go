package server

import (
	"fmt"
	"io"
	"strconv"

	"plume/internal/models"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm is the JSON body for post creation and editing. Multipart requests
// carry the same fields as form values plus an optional image file.
type postForm struct {
	Text    string `json:"text"`
	GroupID *uint  `json:"group_id"`
}

func parseGroupIDValue(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, models.NewValidationError("Invalid group_id")
	}
	gid := uint(id)
	return &gid, nil
}

// readPostForm extracts the post fields from either a JSON or a multipart
// body. The returned closer is non-nil when an image file was attached.
func readPostForm(c *fiber.Ctx) (postForm, io.ReadCloser, error) {
	var form postForm

	if _, err := c.MultipartForm(); err == nil {
		form.Text = c.FormValue("text")
		groupID, err := parseGroupIDValue(c.FormValue("group_id"))
		if err != nil {
			return form, nil, err
		}
		form.GroupID = groupID

		if file, err := c.FormFile("image"); err == nil && file != nil {
			image, err := file.Open()
			if err != nil {
				return form, nil, err
			}
			return form, image, nil
		}
		return form, nil, nil
	}

	if err := c.BodyParser(&form); err != nil {
		return form, nil, models.NewValidationError("Invalid request body")
	}
	return form, nil, nil
}

func closeQuietly(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}

// handleCreatePost creates a post for the authenticated user.
func (s *Server) handleCreatePost(c *fiber.Ctx) error {
	form, image, err := readPostForm(c)
	if err != nil {
		return respondError(c, err)
	}
	defer closeQuietly(image)

	input := service.CreatePostInput{
		UserID:  currentUserID(c),
		Text:    form.Text,
		GroupID: form.GroupID,
	}
	if image != nil {
		input.Image = image
	}

	post, err := s.postService.CreatePost(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}

	// A fresh post lands on the author's profile.
	c.Set("Location", fmt.Sprintf("/api/users/%s/posts", post.User.Username))
	return c.Status(fiber.StatusCreated).JSON(post)
}

// handleGetPost serves a post and its comment thread.
func (s *Server) handleGetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	detail, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// handleEditPost updates a post. A caller who is not the author is sent back
// to the post's read-only view instead of getting an error.
func (s *Server) handleEditPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	form, image, err := readPostForm(c)
	if err != nil {
		return respondError(c, err)
	}
	defer closeQuietly(image)

	input := service.EditPostInput{
		PostID:  id,
		UserID:  currentUserID(c),
		Text:    form.Text,
		GroupID: form.GroupID,
	}
	if image != nil {
		input.Image = image
	}

	post, err := s.postService.EditPost(c.UserContext(), input)
	if err != nil {
		if models.IsForbidden(err) {
			return c.Redirect(fmt.Sprintf("/api/posts/%d", id), fiber.StatusSeeOther)
		}
		return respondError(c, err)
	}
	return c.JSON(post)
}

// handleDeletePost deletes a post and its comment thread.
func (s *Server) handleDeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.postService.DeletePost(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
