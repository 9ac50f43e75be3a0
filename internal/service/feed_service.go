// Package service contains the application's business logic, sitting between
// the HTTP handlers and the repositories.
package service

import (
	"context"
	"log/slog"
	"time"

	"plume/internal/cache"
	"plume/internal/middleware"
	"plume/internal/models"
	"plume/internal/pagination"
	"plume/internal/repository"
)

// FeedPage is one page of a post feed plus its page metadata. It is the unit
// the cache stores, so everything in it must be viewer-independent.
type FeedPage struct {
	Posts []*models.Post  `json:"posts"`
	Meta  pagination.Meta `json:"meta"`
}

// GroupFeedPage is a group's description together with one page of its posts.
type GroupFeedPage struct {
	Group models.Group `json:"group"`
	FeedPage
}

// ProfilePage is an author's profile together with one page of their posts.
// Following and IsOwnProfile are viewer-dependent and are computed after the
// cache lookup.
type ProfilePage struct {
	Author         *models.User `json:"author"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
	Following      bool         `json:"following"`
	IsOwnProfile   bool         `json:"is_own_profile"`
	FeedPage
}

// FeedService assembles the four post feeds. Pages are cached whole under the
// requested page number; writes do not invalidate them, so a page may lag
// reality by up to the TTL until it expires or the cache is flushed.
type FeedService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	groupRepo  repository.GroupRepository
	followRepo repository.FollowRepository
	pageSize   int
	ttl        time.Duration
}

// NewFeedService creates a feed service with the given page size and cache TTL.
func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	followRepo repository.FollowRepository,
	pageSize int,
	ttl time.Duration,
) *FeedService {
	if pageSize < 1 {
		pageSize = 10
	}
	if ttl <= 0 {
		ttl = cache.DefaultFeedTTL
	}
	return &FeedService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		followRepo: followRepo,
		pageSize:   pageSize,
		ttl:        ttl,
	}
}

// PageSize returns the fixed page size shared by every feed.
func (s *FeedService) PageSize() int {
	return s.pageSize
}

// loadPage runs the cache-aside read for one feed page. count and list close
// over the feed's filter; feed labels the hit/miss metrics.
func (s *FeedService) loadPage(
	ctx context.Context,
	feed, key string,
	page int,
	count func(context.Context) (int64, error),
	list func(ctx context.Context, limit, offset int) ([]*models.Post, error),
) (*FeedPage, error) {
	var result FeedPage
	hit, err := cache.Aside(ctx, key, &result, s.ttl, func() error {
		total, err := count(ctx)
		if err != nil {
			return err
		}
		p := pagination.New(total, s.pageSize)
		posts, err := list(ctx, p.PerPage(), p.Offset(page))
		if err != nil {
			return err
		}
		if posts == nil {
			posts = []*models.Post{}
		}
		result = FeedPage{Posts: posts, Meta: p.MetaFor(page)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		middleware.FeedCacheHits.WithLabelValues(feed).Inc()
	} else {
		middleware.FeedCacheMisses.WithLabelValues(feed).Inc()
	}
	slog.DebugContext(ctx, "feed page served", "feed", feed, "page", page, "cache_hit", hit)
	return &result, nil
}

// GlobalFeed returns one page of all posts, newest first.
func (s *FeedService) GlobalFeed(ctx context.Context, page int) (*FeedPage, error) {
	return s.loadPage(ctx, "global", cache.GlobalFeedKey(page), page,
		s.postRepo.CountAll, s.postRepo.ListAll)
}

// GroupFeed returns a group and one page of its posts. The group lookup runs
// on every request so a deleted group 404s immediately even while its pages
// are still cached.
func (s *FeedService) GroupFeed(ctx context.Context, slug string, page int) (*GroupFeedPage, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	feedPage, err := s.loadPage(ctx, "group", cache.GroupFeedKey(slug, page), page,
		func(ctx context.Context) (int64, error) {
			return s.postRepo.CountByGroup(ctx, group.ID)
		},
		func(ctx context.Context, limit, offset int) ([]*models.Post, error) {
			return s.postRepo.ListByGroup(ctx, group.ID, limit, offset)
		})
	if err != nil {
		return nil, err
	}

	return &GroupFeedPage{Group: *group, FeedPage: *feedPage}, nil
}

// ProfileFeed returns an author's profile page. viewerID may be zero for an
// anonymous viewer, in which case Following is always false.
func (s *FeedService) ProfileFeed(ctx context.Context, username string, page int, viewerID uint) (*ProfilePage, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	feedPage, err := s.loadPage(ctx, "profile", cache.ProfileFeedKey(username, page), page,
		func(ctx context.Context) (int64, error) {
			return s.postRepo.CountByAuthor(ctx, author.ID)
		},
		func(ctx context.Context, limit, offset int) ([]*models.Post, error) {
			return s.postRepo.ListByAuthor(ctx, author.ID, limit, offset)
		})
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.followRepo.CountFollowing(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 && viewerID != author.ID {
		following, err = s.followRepo.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfilePage{
		Author:         author,
		FollowersCount: followers,
		FollowingCount: followingCount,
		Following:      following,
		IsOwnProfile:   viewerID != 0 && viewerID == author.ID,
		FeedPage:       *feedPage,
	}, nil
}

// FollowingFeed returns one page of posts by authors the viewer follows.
// Viewer ID 0 means anonymous; the route requires auth, so the service simply
// answers with an empty page instead of erroring.
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID uint, page int) (*FeedPage, error) {
	if viewerID == 0 {
		p := pagination.New(0, s.pageSize)
		return &FeedPage{Posts: []*models.Post{}, Meta: p.MetaFor(page)}, nil
	}
	return s.loadPage(ctx, "following", cache.FollowingFeedKey(viewerID, page), page,
		func(ctx context.Context) (int64, error) {
			return s.postRepo.CountFollowing(ctx, viewerID)
		},
		func(ctx context.Context, limit, offset int) ([]*models.Post, error) {
			return s.postRepo.ListFollowing(ctx, viewerID, limit, offset)
		})
}

// ClearCache flushes every cached feed page.
func (s *FeedService) ClearCache(ctx context.Context) error {
	return cache.ClearFeeds(ctx)
}
