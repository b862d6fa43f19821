// Package server exposes the board over a local JSON API for a UI to drive.
package server

import (
	"context"
	"fmt"
	"io"
	"time"

	"boardclient/internal/auth"
	"boardclient/internal/client"
	"boardclient/internal/config"
	"boardclient/internal/database"
	"boardclient/internal/localstore"
	"boardclient/internal/middleware"
	"boardclient/internal/models"
	"boardclient/internal/observability"
	"boardclient/internal/repository"
	"boardclient/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	kv             localstore.KV
	provider       auth.Provider
	board          *client.Board
	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	kv, err := localstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("local storage failed: %w", err)
	}

	if cfg.StoreDriver == config.StoreDriverMemory {
		// Accounts still need a table; keep them in an ephemeral SQLite.
		db, err := database.OpenSQLite(":memory:")
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		store := repository.NewMemoryStore()
		return newServer(cfg, db, kv, store.Posts(), store.Comments()), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, db, kv), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The database must already be migrated.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, kv localstore.KV) *Server {
	return newServer(cfg, db, kv, repository.NewPostRepository(db), repository.NewCommentRepository(db))
}

func newServer(
	cfg *config.Config,
	db *gorm.DB,
	kv localstore.KV,
	posts repository.PostRepository,
	comments repository.CommentRepository,
) *Server {
	provider := auth.NewLocalProvider(db, cfg.JWTSecret)
	return &Server{
		config:         cfg,
		db:             db,
		kv:             kv,
		provider:       provider,
		board:          client.NewBoard(session.NewStore(kv), provider, posts, comments),
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
	}
}

// NewApp returns a Fiber app whose unhandled errors use the standard error
// body.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   "Board Client API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware(observability.Tracer))

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Annotate logs with the bearer's user before the request is logged.
	app.Use(s.SessionContext())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/health", s.HealthCheck)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", s.Signup)
	authGroup.Post("/login", s.Login)
	authGroup.Post("/logout", s.Logout)
	api.Get("/session", s.GetSession)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.CreatePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)
	posts.Post("/:id/upvote", s.UpvotePost)
	posts.Get("/:id/comments", s.ListComments)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Put("/:id/draft", s.SaveCommentDraft)
	posts.Post("/:id/draft/submit", s.SubmitCommentDraft)

	comments := api.Group("/comments")
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)
}

// HealthCheck reports whether the backend store and local storage respond.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unavailable"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	storageStatus := "healthy"
	if _, _, err := s.kv.Get(ctx, session.UserKey); err != nil {
		storageStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || storageStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database":      dbStatus,
			"local_storage": storageStatus,
		},
		"time": time.Now(),
	})
}

// SessionContext verifies an optional bearer token and tags the request
// context with its user. Requests without a valid token pass through
// unchanged; the board's own session decides identity.
func (s *Server) SessionContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}
		if userID, err := s.provider.Verify(token); err == nil {
			c.Locals("userID", userID)
			c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))
		}
		return c.Next()
	}
}

// Shutdown releases the database and local storage.
func (s *Server) Shutdown(_ context.Context) error {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", "error", cerr.Error())
			}
		}
	}
	if closer, ok := s.kv.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			middleware.Logger.Error("error closing local storage", "error", err.Error())
		}
	}
	middleware.Logger.Info("Server shutdown complete")
	return nil
}
