package repository

import (
	"context"
	"testing"

	"plume/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSQLiteDB opens an in-memory database with foreign keys enforced so
// relational invariants (cascades, SET NULL) behave like production.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "pw"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestFollowRepository_FollowIsIdempotent(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	follower := createUser(t, db, "follower")
	author := createUser(t, db, "author")

	require.NoError(t, repo.Follow(ctx, follower.ID, author.ID))
	require.NoError(t, repo.Follow(ctx, follower.ID, author.ID))
	require.NoError(t, repo.Follow(ctx, follower.ID, author.ID))

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", follower.ID, author.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "repeated follows must keep exactly one edge")
}

func TestFollowRepository_Unfollow(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	follower := createUser(t, db, "follower")
	author := createUser(t, db, "author")

	err := repo.Unfollow(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "unfollow without an edge reports not found")

	require.NoError(t, repo.Follow(ctx, follower.ID, author.ID))
	require.NoError(t, repo.Unfollow(ctx, follower.ID, author.ID))

	exists, err := repo.Exists(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFollowRepository_Counts(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "a")
	b := createUser(t, db, "b")
	c := createUser(t, db, "c")

	require.NoError(t, repo.Follow(ctx, a.ID, c.ID))
	require.NoError(t, repo.Follow(ctx, b.ID, c.ID))
	require.NoError(t, repo.Follow(ctx, a.ID, b.ID))

	followers, err := repo.CountFollowers(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers)

	following, err := repo.CountFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), following)
}

func TestRelations_GroupDeleteNullsPostReference(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()

	author := createUser(t, db, "author")
	group := &models.Group{Title: "Go", Slug: "go", Description: "gophers"}
	require.NoError(t, db.Create(group).Error)

	posts := NewPostRepository(db)
	post := &models.Post{Text: "grouped", UserID: author.ID, GroupID: &group.ID}
	require.NoError(t, posts.Create(ctx, post))

	require.NoError(t, NewGroupRepository(db).Delete(ctx, group.ID))

	reloaded, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err, "the post must survive its group's deletion")
	assert.Nil(t, reloaded.GroupID)
}

func TestRelations_PostDeleteCascadesComments(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()

	author := createUser(t, db, "author")
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)

	post := &models.Post{Text: "commented", UserID: author.ID}
	require.NoError(t, posts.Create(ctx, post))
	require.NoError(t, comments.Create(ctx, &models.Comment{Text: "first", PostID: post.ID, UserID: author.ID}))
	require.NoError(t, comments.Create(ctx, &models.Comment{Text: "second", PostID: post.ID, UserID: author.ID}))

	require.NoError(t, posts.Delete(ctx, post.ID))

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count, "comments must be removed with their post")
}

func TestCommentRepository_ListByPostAscending(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()

	author := createUser(t, db, "author")
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)

	post := &models.Post{Text: "thread", UserID: author.ID}
	require.NoError(t, posts.Create(ctx, post))
	require.NoError(t, comments.Create(ctx, &models.Comment{Text: "first", PostID: post.ID, UserID: author.ID}))
	require.NoError(t, comments.Create(ctx, &models.Comment{Text: "second", PostID: post.ID, UserID: author.ID}))

	thread, err := comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Text)
	assert.Equal(t, "second", thread[1].Text)
}

func TestPostRepository_ListFollowing(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()

	viewer := createUser(t, db, "viewer")
	followed := createUser(t, db, "followed")
	stranger := createUser(t, db, "stranger")

	posts := NewPostRepository(db)
	follows := NewFollowRepository(db)

	require.NoError(t, posts.Create(ctx, &models.Post{Text: "from followed", UserID: followed.ID}))
	require.NoError(t, posts.Create(ctx, &models.Post{Text: "from stranger", UserID: stranger.ID}))
	require.NoError(t, follows.Follow(ctx, viewer.ID, followed.ID))

	feed, err := posts.ListFollowing(ctx, viewer.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "from followed", feed[0].Text)

	count, err := posts.CountFollowing(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A viewer following nobody gets an empty sequence, not an error.
	empty, err := posts.ListFollowing(ctx, stranger.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
