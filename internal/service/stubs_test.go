package service

import (
	"context"

	"plume/internal/models"
)

// Func-field repository stubs. A nil field means the test does not expect
// that call; reaching it panics and fails loudly.

type stubPostRepo struct {
	CreateFunc         func(ctx context.Context, post *models.Post) error
	GetByIDFunc        func(ctx context.Context, id uint) (*models.Post, error)
	UpdateFunc         func(ctx context.Context, post *models.Post) error
	DeleteFunc         func(ctx context.Context, id uint) error
	CountAllFunc       func(ctx context.Context) (int64, error)
	ListAllFunc        func(ctx context.Context, limit, offset int) ([]*models.Post, error)
	CountByGroupFunc   func(ctx context.Context, groupID uint) (int64, error)
	ListByGroupFunc    func(ctx context.Context, groupID uint, limit, offset int) ([]*models.Post, error)
	CountByAuthorFunc  func(ctx context.Context, userID uint) (int64, error)
	ListByAuthorFunc   func(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	CountFollowingFunc func(ctx context.Context, viewerID uint) (int64, error)
	ListFollowingFunc  func(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error)
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	return s.CreateFunc(ctx, post)
}
func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.GetByIDFunc(ctx, id)
}
func (s *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	return s.UpdateFunc(ctx, post)
}
func (s *stubPostRepo) Delete(ctx context.Context, id uint) error {
	return s.DeleteFunc(ctx, id)
}
func (s *stubPostRepo) CountAll(ctx context.Context) (int64, error) {
	return s.CountAllFunc(ctx)
}
func (s *stubPostRepo) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.ListAllFunc(ctx, limit, offset)
}
func (s *stubPostRepo) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	return s.CountByGroupFunc(ctx, groupID)
}
func (s *stubPostRepo) ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]*models.Post, error) {
	return s.ListByGroupFunc(ctx, groupID, limit, offset)
}
func (s *stubPostRepo) CountByAuthor(ctx context.Context, userID uint) (int64, error) {
	return s.CountByAuthorFunc(ctx, userID)
}
func (s *stubPostRepo) ListByAuthor(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.ListByAuthorFunc(ctx, userID, limit, offset)
}
func (s *stubPostRepo) CountFollowing(ctx context.Context, viewerID uint) (int64, error) {
	return s.CountFollowingFunc(ctx, viewerID)
}
func (s *stubPostRepo) ListFollowing(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.ListFollowingFunc(ctx, viewerID, limit, offset)
}

type stubUserRepo struct {
	CreateFunc        func(ctx context.Context, user *models.User) error
	GetByIDFunc       func(ctx context.Context, id uint) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	UpdateFunc        func(ctx context.Context, user *models.User) error
	DeleteFunc        func(ctx context.Context, id uint) error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	return s.CreateFunc(ctx, user)
}
func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.GetByIDFunc(ctx, id)
}
func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.GetByUsernameFunc(ctx, username)
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.GetByEmailFunc(ctx, email)
}
func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	return s.UpdateFunc(ctx, user)
}
func (s *stubUserRepo) Delete(ctx context.Context, id uint) error {
	return s.DeleteFunc(ctx, id)
}

type stubGroupRepo struct {
	CreateFunc    func(ctx context.Context, group *models.Group) error
	GetBySlugFunc func(ctx context.Context, slug string) (*models.Group, error)
	GetByIDFunc   func(ctx context.Context, id uint) (*models.Group, error)
	ListFunc      func(ctx context.Context) ([]models.Group, error)
	DeleteFunc    func(ctx context.Context, id uint) error
}

func (s *stubGroupRepo) Create(ctx context.Context, group *models.Group) error {
	return s.CreateFunc(ctx, group)
}
func (s *stubGroupRepo) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.GetBySlugFunc(ctx, slug)
}
func (s *stubGroupRepo) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.GetByIDFunc(ctx, id)
}
func (s *stubGroupRepo) List(ctx context.Context) ([]models.Group, error) {
	return s.ListFunc(ctx)
}
func (s *stubGroupRepo) Delete(ctx context.Context, id uint) error {
	return s.DeleteFunc(ctx, id)
}

type stubCommentRepo struct {
	CreateFunc     func(ctx context.Context, comment *models.Comment) error
	GetByIDFunc    func(ctx context.Context, id uint) (*models.Comment, error)
	ListByPostFunc func(ctx context.Context, postID uint) ([]*models.Comment, error)
	DeleteFunc     func(ctx context.Context, id uint) error
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return s.CreateFunc(ctx, comment)
}
func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.GetByIDFunc(ctx, id)
}
func (s *stubCommentRepo) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.ListByPostFunc(ctx, postID)
}
func (s *stubCommentRepo) Delete(ctx context.Context, id uint) error {
	return s.DeleteFunc(ctx, id)
}

type stubFollowRepo struct {
	FollowFunc         func(ctx context.Context, followerID, authorID uint) error
	UnfollowFunc       func(ctx context.Context, followerID, authorID uint) error
	ExistsFunc         func(ctx context.Context, followerID, authorID uint) (bool, error)
	CountFollowersFunc func(ctx context.Context, authorID uint) (int64, error)
	CountFollowingFunc func(ctx context.Context, followerID uint) (int64, error)
}

func (s *stubFollowRepo) Follow(ctx context.Context, followerID, authorID uint) error {
	return s.FollowFunc(ctx, followerID, authorID)
}
func (s *stubFollowRepo) Unfollow(ctx context.Context, followerID, authorID uint) error {
	return s.UnfollowFunc(ctx, followerID, authorID)
}
func (s *stubFollowRepo) Exists(ctx context.Context, followerID, authorID uint) (bool, error) {
	return s.ExistsFunc(ctx, followerID, authorID)
}
func (s *stubFollowRepo) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	return s.CountFollowersFunc(ctx, authorID)
}
func (s *stubFollowRepo) CountFollowing(ctx context.Context, followerID uint) (int64, error) {
	return s.CountFollowingFunc(ctx, followerID)
}
