// Package seed fills a development database with plausible demo content.
package seed

import (
	"fmt"
	"strings"

	"plume/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password every seeded account gets.
const DemoPassword = "plume-demo-password"

// NewUser builds a random user. The index keeps usernames and emails unique
// across a run.
func NewUser(i int) *models.User {
	username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
	hash, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	return &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password: string(hash),
		Bio:      gofakeit.Sentence(8),
	}
}

// NewGroup builds a random group with a slug derived from its title.
func NewGroup(i int) *models.Group {
	title := gofakeit.BuzzWord() + " " + gofakeit.NounAbstract()
	slug := fmt.Sprintf("%s-%d", strings.ReplaceAll(strings.ToLower(title), " ", "-"), i)
	return &models.Group{
		Title:       title,
		Slug:        slug,
		Description: gofakeit.Sentence(12),
	}
}

// NewPost builds a random post by the given author, optionally in a group.
func NewPost(userID uint, groupID *uint) *models.Post {
	return &models.Post{
		Text:    gofakeit.Paragraph(1, 3, 12, " "),
		UserID:  userID,
		GroupID: groupID,
	}
}

// NewComment builds a random comment on the given post.
func NewComment(postID, userID uint) *models.Comment {
	return &models.Comment{
		Text:   gofakeit.Sentence(10),
		PostID: postID,
		UserID: userID,
	}
}
