package seed

import (
	"context"
	"log/slog"
	"math/rand"

	"plume/internal/models"
	"plume/internal/repository"

	"gorm.io/gorm"
)

// Options controls how much content a run produces.
type Options struct {
	Users           int
	Groups          int
	PostsPerUser    int
	CommentsPerPost int
	FollowsPerUser  int
}

// DefaultOptions is sized for a local demo database.
var DefaultOptions = Options{
	Users:           10,
	Groups:          4,
	PostsPerUser:    5,
	CommentsPerPost: 2,
	FollowsPerUser:  3,
}

// Run populates the database with demo users, groups, posts, comments and
// follow relations. It is additive and safe to run more than once.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := NewUser(i)
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		users = append(users, user)
	}

	groups := make([]*models.Group, 0, opts.Groups)
	for i := 0; i < opts.Groups; i++ {
		group := NewGroup(i)
		if err := groupRepo.Create(ctx, group); err != nil {
			return err
		}
		groups = append(groups, group)
	}

	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			var groupID *uint
			// Roughly half the posts land in a group.
			if len(groups) > 0 && rand.Intn(2) == 0 {
				groupID = &groups[rand.Intn(len(groups))].ID
			}
			post := NewPost(user.ID, groupID)
			if err := postRepo.Create(ctx, post); err != nil {
				return err
			}
			posts = append(posts, post)
		}
	}

	for _, post := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			commenter := users[rand.Intn(len(users))]
			if err := commentRepo.Create(ctx, NewComment(post.ID, commenter.ID)); err != nil {
				return err
			}
		}
	}

	for _, user := range users {
		for i := 0; i < opts.FollowsPerUser; i++ {
			author := users[rand.Intn(len(users))]
			if author.ID == user.ID {
				continue
			}
			if err := followRepo.Follow(ctx, user.ID, author.ID); err != nil {
				return err
			}
		}
	}

	slog.InfoContext(ctx, "seed complete",
		"users", len(users), "groups", len(groups), "posts", len(posts))
	return nil
}
