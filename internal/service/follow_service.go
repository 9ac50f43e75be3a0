package service

import (
	"context"
	"errors"
	"log/slog"

	"plume/internal/models"
	"plume/internal/repository"

	"gorm.io/gorm"
)

// FollowService manages follow edges between users. Authors are addressed by
// username, the way profiles are.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService creates a new follow service.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow subscribes the follower to the author's posts. Following yourself is
// a silent no-op and repeating an existing follow changes nothing.
func (s *FollowService) Follow(ctx context.Context, followerID uint, authorUsername string) error {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}
	if author.ID == followerID {
		return nil
	}
	if err := s.followRepo.Follow(ctx, followerID, author.ID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "follow created", "follower_id", followerID, "author_id", author.ID)
	return nil
}

// Unfollow removes the subscription. Unfollowing someone you do not follow is
// reported as not found.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, authorUsername string) error {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}
	if err := s.followRepo.Unfollow(ctx, followerID, author.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Follow", authorUsername)
		}
		return err
	}
	slog.InfoContext(ctx, "follow removed", "follower_id", followerID, "author_id", author.ID)
	return nil
}

// IsFollowing reports whether follower subscribes to the author.
func (s *FollowService) IsFollowing(ctx context.Context, followerID uint, authorUsername string) (bool, error) {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return false, err
	}
	if author.ID == followerID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, followerID, author.ID)
}
