package service

import (
	"context"
	"log/slog"
	"strings"

	"plume/internal/models"
	"plume/internal/repository"
)

// CommentService handles comment creation and deletion.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// AddCommentInput contains the data needed to add a comment.
type AddCommentInput struct {
	PostID uint
	UserID uint
	Text   string
}

// AddComment appends a comment to a post's thread. The post must exist and
// the text must be non-empty.
func (s *CommentService) AddComment(ctx context.Context, input AddCommentInput) (*models.Comment, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required").
			WithInput(map[string]any{"text": input.Text})
	}

	if _, err := s.postRepo.GetByID(ctx, input.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:   text,
		PostID: input.PostID,
		UserID: input.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "comment added", "comment_id", comment.ID, "post_id", input.PostID)
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment. Only the comment's author may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("Only the author can delete a comment")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
