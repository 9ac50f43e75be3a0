// Package server wires the HTTP layer: the Fiber application, its middleware
// chain and the route table.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"plume/internal/cache"
	"plume/internal/config"
	"plume/internal/database"
	"plume/internal/media"
	"plume/internal/middleware"
	"plume/internal/models"
	"plume/internal/repository"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds the Fiber app and every dependency the handlers need.
type Server struct {
	App *fiber.App
	cfg *config.Config
	db  *gorm.DB

	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository

	feedService    *service.FeedService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
}

// NewServer connects to the database, runs migrations and assembles the full
// dependency graph.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	cache.Connect(cfg)

	mediaStore, err := media.NewStore(cfg.MediaRoot)
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, mediaStore), nil
}

// NewServerWithDeps assembles a Server from already-constructed dependencies.
// Tests use it to inject an in-memory database and a temporary media root.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, mediaStore *media.Store) *Server {
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	ttl := time.Duration(cfg.FeedCacheTTLSeconds) * time.Second

	s := &Server{
		cfg:       cfg,
		db:        db,
		userRepo:  userRepo,
		groupRepo: groupRepo,

		feedService:    service.NewFeedService(postRepo, userRepo, groupRepo, followRepo, cfg.FeedPageSize, ttl),
		postService:    service.NewPostService(postRepo, groupRepo, commentRepo, userRepo, mediaStore),
		commentService: service.NewCommentService(commentRepo, postRepo),
		followService:  service.NewFollowService(followRepo, userRepo),
	}

	s.App = fiber.New(fiber.Config{
		BodyLimit:    cfg.MediaMaxUploadSizeMB * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})

	middleware.InitMiddleware(cfg)
	s.setupMiddleware(mediaStore)
	s.setupRoutes()
	return s
}

// errorHandler catches errors that escape the handlers. Anything that is not
// already an AppError or a fiber error is unexpected and is reported as a
// generic internal error.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(models.ErrorResponse{Error: e.Message})
	}
	slog.ErrorContext(c.UserContext(), "unhandled error", "error", err, "path", c.Path())

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		err = models.NewInternalError(err)
	}
	return models.RespondWithError(c, models.StatusForError(err), err)
}

func (s *Server) setupMiddleware(mediaStore *media.Store) {
	s.App.Use(recover.New())
	s.App.Use(requestid.New())
	s.App.Use(middleware.TracingMiddleware())
	s.App.Use(middleware.ContextMiddleware())

	prom := middleware.InitMetrics("plume")
	prom.RegisterAt(s.App, "/metrics")
	s.App.Use(middleware.MetricsMiddleware(prom))

	s.App.Use(helmet.New())
	s.App.Use(middleware.StructuredLogger())
	s.App.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete,
		}, ","),
	}))
	s.App.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return s.cfg.Env == "test"
		},
	}))

	// Uploaded images are served as plain static files.
	s.App.Static("/media", mediaStore.Root())
}

func (s *Server) setupRoutes() {
	s.App.Get("/health", s.handleHealth)

	api := s.App.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.handleRegister)
	auth.Post("/login", s.handleLogin)
	auth.Get("/me", middleware.AuthRequired, s.handleMe)

	api.Get("/feed", s.handleGlobalFeed)
	api.Get("/feed/following", middleware.AuthRequired, s.handleFollowingFeed)
	api.Get("/groups", s.handleListGroups)
	api.Get("/groups/:slug/posts", s.handleGroupFeed)
	api.Get("/users/:username/posts", middleware.OptionalAuth, s.handleProfileFeed)

	api.Post("/posts", middleware.AuthRequired, s.handleCreatePost)
	api.Get("/posts/:id", s.handleGetPost)
	api.Put("/posts/:id", middleware.AuthRequired, s.handleEditPost)
	api.Delete("/posts/:id", middleware.AuthRequired, s.handleDeletePost)

	api.Post("/posts/:id/comments", middleware.AuthRequired, s.handleAddComment)
	api.Delete("/comments/:id", middleware.AuthRequired, s.handleDeleteComment)

	api.Post("/users/:username/follow", middleware.AuthRequired, s.handleFollow)
	api.Delete("/users/:username/follow", middleware.AuthRequired, s.handleUnfollow)

	api.Get("/about/author", s.handleAboutAuthor)
	api.Get("/about/tech", s.handleAboutTech)

	admin := api.Group("/admin", middleware.AuthRequired, s.requireAdmin)
	admin.Post("/groups", s.handleCreateGroup)
	admin.Delete("/groups/:id", s.handleDeleteGroup)
	admin.Post("/cache/clear", s.handleClearCache)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.Ping() != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	return c.JSON(status)
}

// Listen starts serving on the configured port.
func (s *Server) Listen() error {
	return s.App.Listen(":" + s.cfg.Port)
}

// Shutdown drains in-flight requests and closes the database connection.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.App.ShutdownWithContext(ctx); err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
