package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plume/internal/cache"
	"plume/internal/config"
	"plume/internal/media"
	"plume/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fixture runs the full HTTP stack against an in-memory database, a miniredis
// instance and a temporary media root.
type fixture struct {
	t   *testing.T
	srv *Server
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
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

	mr := miniredis.RunT(t)
	cache.InitRedis(mr.Addr())

	mediaStore, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                 "0",
		Env:                  "test",
		JWTSecret:            "test-secret-key-for-handler-tests-only!",
		FeedPageSize:         10,
		FeedCacheTTLSeconds:  20,
		MediaRoot:            mediaStore.Root(),
		MediaMaxUploadSizeMB: 10,
		AllowedOrigins:       "*",
	}

	return &fixture{t: t, srv: NewServerWithDeps(cfg, db, mediaStore), db: db, mr: mr}
}

// do performs a JSON request against the app and returns the response.
func (f *fixture) do(method, path, token string, body any) *http.Response {
	f.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.srv.App.Test(req, -1)
	require.NoError(f.t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// register creates an account through the API and returns its token.
func (f *fixture) register(username string) string {
	f.t.Helper()
	resp := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery staple",
	})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	decode(f.t, resp, &out)
	require.NotEmpty(f.t, out.Token)
	return out.Token
}

// registerAdmin registers a user and promotes it directly in the store.
func (f *fixture) registerAdmin(username string) string {
	f.t.Helper()
	token := f.register(username)
	require.NoError(f.t, f.db.Model(&models.User{}).
		Where("username = ?", username).
		Update("is_admin", true).Error)
	return token
}

// createGroup provisions a group through the admin API.
func (f *fixture) createGroup(adminToken, title, slug string) {
	f.t.Helper()
	resp := f.do(http.MethodPost, "/api/admin/groups", adminToken, map[string]string{
		"title": title,
		"slug":  slug,
	})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// createPost publishes a post through the API and returns its ID.
func (f *fixture) createPost(token, text string, groupID *uint) uint {
	f.t.Helper()
	body := map[string]any{"text": text}
	if groupID != nil {
		body["group_id"] = *groupID
	}
	resp := f.do(http.MethodPost, "/api/posts", token, body)
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decode(f.t, resp, &post)
	require.NotZero(f.t, post.ID)
	return post.ID
}

type feedResponse struct {
	Posts []struct {
		ID   uint   `json:"id"`
		Text string `json:"text"`
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	} `json:"posts"`
	Meta struct {
		Number     int   `json:"number"`
		TotalPages int   `json:"total_pages"`
		TotalItems int64 `json:"total_items"`
		HasNext    bool  `json:"has_next"`
		HasPrev    bool  `json:"has_prev"`
	} `json:"meta"`
}

func (f *fixture) getFeed(path, token string) feedResponse {
	f.t.Helper()
	resp := f.do(http.MethodGet, path, token, nil)
	require.Equal(f.t, http.StatusOK, resp.StatusCode)
	var feed feedResponse
	decode(f.t, resp, &feed)
	return feed
}

func (feed feedResponse) texts() []string {
	out := make([]string, len(feed.Posts))
	for i, p := range feed.Posts {
		out[i] = p.Text
	}
	return out
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	f := newFixture(t)

	token := f.register("leo")

	resp := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "leo@example.com",
		"password": "correct horse battery staple",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"user"`
	}
	decode(t, resp, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "leo", login.User.Username)
	assert.Empty(t, login.User.Password, "the password hash must never leave the server")

	resp = f.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me struct {
		Username string `json:"username"`
	}
	decode(t, resp, &me)
	assert.Equal(t, "leo", me.Username)

	// Bad password and missing token are both rejected.
	resp = f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "leo@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_DuplicateRegistration(t *testing.T) {
	f := newFixture(t)
	f.register("leo")

	resp := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "leo",
		"email":    "other@example.com",
		"password": "correct horse battery staple",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "other",
		"email":    "leo@example.com",
		"password": "correct horse battery staple",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdmin_GroupManagementRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	userToken := f.register("plain")
	adminToken := f.registerAdmin("boss")

	resp := f.do(http.MethodPost, "/api/admin/groups", userToken, map[string]string{
		"title": "Go", "slug": "go",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	f.createGroup(adminToken, "Go", "go")

	// Duplicate slugs are rejected.
	resp = f.do(http.MethodPost, "/api/admin/groups", adminToken, map[string]string{
		"title": "Golang", "slug": "go",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(http.MethodGet, "/api/groups", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var groups struct {
		Groups []models.Group `json:"groups"`
	}
	decode(t, resp, &groups)
	require.Len(t, groups.Groups, 1)
	assert.Equal(t, "go", groups.Groups[0].Slug)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAboutPages(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/about/author", "/api/about/tech"} {
		resp := f.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		var page struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		}
		decode(t, resp, &page)
		assert.NotEmpty(t, page.Title)
		assert.NotEmpty(t, page.Body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	// A recorded request guarantees the service-labelled series exist.
	resp := f.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "plume")
}

func TestErrorHandler_UnexpectedErrorIsInternal(t *testing.T) {
	f := newFixture(t)
	f.srv.App.Get("/explode", func(c *fiber.Ctx) error {
		return errors.New("sqlite disk I/O error")
	})

	resp := f.do(http.MethodGet, "/explode", "", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body models.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.Equal(t, "Internal server error", body.Error)
}

func TestAdmin_TargetedCacheFlush(t *testing.T) {
	f := newFixture(t)
	adminToken := f.registerAdmin("boss")
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, cache.GlobalFeedKey(1), "page-one", time.Minute))
	require.NoError(t, cache.SetJSON(ctx, cache.GlobalFeedKey(2), "page-two", time.Minute))

	resp := f.do(http.MethodPost, "/api/admin/cache/clear?key="+cache.GlobalFeedKey(1), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var dest string
	found, err := cache.GetJSON(ctx, cache.GlobalFeedKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found, "the named page must be gone")

	found, err = cache.GetJSON(ctx, cache.GlobalFeedKey(2), &dest)
	require.NoError(t, err)
	assert.True(t, found, "other pages survive a targeted flush")

	// Without a key the whole feed cache goes.
	resp = f.do(http.MethodPost, "/api/admin/cache/clear", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	found, err = cache.GetJSON(ctx, cache.GlobalFeedKey(2), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func groupIDBySlug(t *testing.T, db *gorm.DB, slug string) uint {
	t.Helper()
	var group models.Group
	require.NoError(t, db.Where("slug = ?", slug).First(&group).Error)
	return group.ID
}

func postPath(id uint) string {
	return fmt.Sprintf("/api/posts/%d", id)
}
