package seed

import (
	"context"
	"testing"

	"plume/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRun(t *testing.T) {
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

	opts := Options{Users: 5, Groups: 2, PostsPerUser: 3, CommentsPerPost: 1, FollowsPerUser: 2}
	require.NoError(t, Run(context.Background(), db, opts))

	var users, groups, posts, comments int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)

	assert.Equal(t, int64(5), users)
	assert.Equal(t, int64(2), groups)
	assert.Equal(t, int64(15), posts)
	assert.Equal(t, int64(15), comments)

	// Self-follows never appear, however the random picks landed.
	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = author_id").
		Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)
}
