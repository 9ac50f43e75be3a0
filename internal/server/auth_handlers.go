package server

import (
	"strconv"
	"strings"
	"time"

	"plume/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type registerForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// issueToken signs a 24h access token with the user's ID as subject.
func (s *Server) issueToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// handleRegister creates an account and returns a token for it.
func (s *Server) handleRegister(c *fiber.Ctx) error {
	var form registerForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(strings.ToLower(form.Email))
	if form.Username == "" || form.Email == "" {
		return respondError(c, models.NewValidationError("Username and email are required"))
	}
	if len(form.Password) < 8 {
		return respondError(c, models.NewValidationError("Password must be at least 8 characters"))
	}

	if _, err := s.userRepo.GetByUsername(c.UserContext(), form.Username); err == nil {
		return respondError(c, models.NewValidationError("Username already taken"))
	} else if !models.IsNotFound(err) {
		return respondError(c, err)
	}
	if _, err := s.userRepo.GetByEmail(c.UserContext(), form.Email); err == nil {
		return respondError(c, models.NewValidationError("Email already registered"))
	} else if !models.IsNotFound(err) {
		return respondError(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, err)
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		return respondError(c, err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
}

// handleLogin verifies credentials and returns a token. Unknown emails and
// bad passwords are indistinguishable to the caller.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), strings.TrimSpace(strings.ToLower(form.Email)))
	if err != nil {
		if models.IsNotFound(err) {
			return respondError(c, models.NewUnauthorizedError("Invalid credentials"))
		}
		return respondError(c, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
		return respondError(c, models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user, "token": token})
}

// handleMe returns the authenticated user's own record.
func (s *Server) handleMe(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// requireAdmin guards the administrative routes.
func (s *Server) requireAdmin(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	if !user.IsAdmin {
		return respondError(c, models.NewForbiddenError("Administrator access required"))
	}
	return c.Next()
}
