// Package server contains the HTTP layer: routing, auth middleware and the
// resource handlers.
package server

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"yatube/cache"
	"yatube/config"
	"yatube/database"
	"yatube/middleware"
	"yatube/models"
	"yatube/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "yatube-api"
	tokenAudience = "yatube-client"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	groupRepo   repository.GroupRepository
	followRepo  repository.FollowRepository
}

// NewServer connects to the database and redis and wires all repositories.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	return newServer(cfg, db, cache.GetClient()), nil
}

// newServer wires a Server over already-established connections. Tests use it
// with an in-memory database and no redis.
func newServer(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	return &Server{
		config:      cfg,
		db:          db,
		redis:       rdb,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		groupRepo:   repository.NewGroupRepository(db),
		followRepo:  repository.NewFollowRepository(db),
	}
}

// SetupMiddleware configures global middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// Global fixed-window limit per client IP.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Detail: "Запрос был проигнорирован из-за превышения лимита.",
			})
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	api.Get("/", s.HealthCheck)

	// User registration and token lifecycle
	v1 := api.Group("/v1")
	v1.Post("/users", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	tokens := v1.Group("/jwt")
	tokens.Post("/create", middleware.RateLimit(s.redis, 10, 5*time.Minute, "jwt_create"), s.CreateToken)
	tokens.Post("/refresh", s.RefreshToken)
	tokens.Post("/verify", s.VerifyToken)

	// Posts and nested comments. Specific /:post_id/comments routes must be
	// registered before the generic /:id routes.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(s.redis, 30, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:post_id/comments", s.GetComments)
	posts.Post("/:post_id/comments", s.AuthRequired(), middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:post_id/comments/:id", s.GetComment)
	posts.Put("/:post_id/comments/:id", s.AuthRequired(), s.UpdateComment)
	posts.Patch("/:post_id/comments/:id", s.AuthRequired(), s.PatchComment)
	posts.Delete("/:post_id/comments/:id", s.AuthRequired(), s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Patch("/:id", s.AuthRequired(), s.PatchPost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)

	// Groups are read-only: every non-GET method is rejected before any
	// handler logic runs.
	groups := api.Group("/groups")
	groups.Get("/", s.GetGroups)
	groups.Get("/:id", s.GetGroup)
	groups.All("/", s.MethodNotAllowed)
	groups.All("/:id", s.MethodNotAllowed)

	// Follows: the whole collection requires authentication, including list.
	follow := api.Group("/follow", s.AuthRequired())
	follow.Get("/", s.GetFollows)
	follow.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "create_follow"), s.CreateFollow)
	follow.Delete("/:id", s.DeleteFollow)
}

// HealthCheck handles GET /api/.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

// MethodNotAllowed rejects mutation attempts on read-only collections.
func (s *Server) MethodNotAllowed(c *fiber.Ctx) error {
	return models.RespondWithError(c, models.NewMethodNotAllowedError(c.Method()))
}

// AuthRequired returns the authentication middleware. It validates the bearer
// token and stores the principal's user ID in the request context. Refresh
// tokens are not accepted here.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError(models.MsgNoCredentials))
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthorizedError(models.MsgInvalidToken))
		}

		if tokenType, _ := claims["token_type"].(string); tokenType == "refresh" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError(models.MsgInvalidToken))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError(models.MsgInvalidToken))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthorizedError(models.MsgInvalidToken))
		}

		c.Locals("userID", uint(userID))

		return c.Next()
	}
}

// parseToken validates the signature, issuer and audience of a token and
// returns its claims.
func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError(models.MsgInvalidToken)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError(models.MsgInvalidToken)
	}
	return claims, nil
}

// principal returns the authenticated user ID stored by AuthRequired.
func (s *Server) principal(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// requireAuthor is the single ownership predicate applied before every
// mutating operation: the principal must equal the resource's author.
func (s *Server) requireAuthor(c *fiber.Ctx, authorID uint) error {
	if s.principal(c) != authorID {
		return models.NewForbiddenError(models.MsgNotEnoughRights)
	}
	return nil
}

// Shutdown closes the database and redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
