package service

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"plume/internal/media"
	"plume/internal/models"
	"plume/internal/repository"
)

// PostService handles post creation, editing and deletion with ownership
// enforcement, plus the post detail view.
type PostService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	media       *media.Store
}

// NewPostService creates a new post service.
func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	mediaStore *media.Store,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		media:       mediaStore,
	}
}

// CreatePostInput contains the data needed to create a post. Image is
// optional; when set the blob is stored and the post references it by path.
type CreatePostInput struct {
	UserID  uint
	Text    string
	GroupID *uint
	Image   io.Reader
}

// EditPostInput contains the data needed to edit a post. A nil GroupID clears
// the group association. Image, when set, replaces the existing blob.
type EditPostInput struct {
	PostID  uint
	UserID  uint
	Text    string
	GroupID *uint
	Image   io.Reader
}

// PostDetail is a post together with its comment thread, oldest comment first.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
}

// resolveGroup validates that a referenced group exists. A dangling group ID
// is a validation problem with the submitted form, not a missing resource.
func (s *PostService) resolveGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
		if models.IsNotFound(err) {
			return models.NewValidationError("Unknown group").
				WithInput(map[string]any{"group_id": *groupID})
		}
		return err
	}
	return nil
}

// CreatePost creates a new post for the given author.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, models.NewValidationError("Post text is required").
			WithInput(map[string]any{"text": input.Text, "group_id": input.GroupID})
	}
	if err := s.resolveGroup(ctx, input.GroupID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:    text,
		UserID:  input.UserID,
		GroupID: input.GroupID,
	}

	if input.Image != nil {
		path, err := s.media.SavePostImage(input.Image)
		if err != nil {
			return nil, err
		}
		post.ImagePath = path
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if post.ImagePath != "" {
			_ = s.media.Remove(post.ImagePath)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", post.UserID)
	return s.postRepo.GetByID(ctx, post.ID)
}

// EditPost updates a post's text, group and image. Only the author may edit;
// anyone else gets a Forbidden error, which the HTTP layer turns into a
// redirect to the post detail.
func (s *PostService) EditPost(ctx context.Context, input EditPostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != input.UserID {
		return nil, models.NewForbiddenError("Only the author can edit a post")
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, models.NewValidationError("Post text is required").
			WithInput(map[string]any{"text": input.Text, "group_id": input.GroupID})
	}
	if err := s.resolveGroup(ctx, input.GroupID); err != nil {
		return nil, err
	}

	oldImage := post.ImagePath
	post.Text = text
	post.GroupID = input.GroupID

	if input.Image != nil {
		path, err := s.media.SavePostImage(input.Image)
		if err != nil {
			return nil, err
		}
		post.ImagePath = path
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		if input.Image != nil && post.ImagePath != oldImage {
			_ = s.media.Remove(post.ImagePath)
		}
		return nil, err
	}
	if input.Image != nil && oldImage != "" && oldImage != post.ImagePath {
		_ = s.media.Remove(oldImage)
	}

	slog.InfoContext(ctx, "post edited", "post_id", post.ID)
	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes a post. The author or an administrator may delete.
// Comments go with the post; the image blob is removed best-effort after the
// row.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		actor, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin {
			return models.NewForbiddenError("Only the author can delete a post")
		}
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	if post.ImagePath != "" {
		_ = s.media.Remove(post.ImagePath)
	}

	slog.InfoContext(ctx, "post deleted", "post_id", postID)
	return nil
}

// GetPost returns a post and its full comment thread.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}
