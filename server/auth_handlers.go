package server

import (
	"fmt"
	"strconv"
	"time"

	"yatube/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Signup handles POST /api/v1/users/.
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Невалидное тело запроса."))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Обязательные поля: username, email, password."))
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if existing == nil {
		existing, err = s.userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			return models.RespondWithError(c, models.NewInternalError(err))
		}
	}
	if existing != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Пользователь с таким именем или email уже существует."))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// CreateToken handles POST /api/v1/jwt/create/ and returns an access/refresh
// token pair for valid credentials.
func (s *Server) CreateToken(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Невалидное тело запроса."))
	}

	user, err := s.userRepo.GetByUsername(c.Context(), req.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if user == nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError("Не найдено активной учетной записи с указанными данными"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError("Не найдено активной учетной записи с указанными данными"))
	}

	access, err := s.generateToken(user.ID, "access")
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	refresh, err := s.generateToken(user.ID, "refresh")
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"access":  access,
		"refresh": refresh,
	})
}

// RefreshToken handles POST /api/v1/jwt/refresh/.
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Обязательное поле: refresh."))
	}

	claims, err := s.parseToken(req.Refresh)
	if err != nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError(models.MsgInvalidToken))
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != "refresh" {
		return models.RespondWithError(c,
			models.NewUnauthorizedError(models.MsgInvalidToken))
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError(models.MsgInvalidToken))
	}

	access, err := s.generateToken(uint(userID), "access")
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"access": access})
}

// VerifyToken handles POST /api/v1/jwt/verify/.
func (s *Server) VerifyToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Обязательное поле: token."))
	}

	if _, err := s.parseToken(req.Token); err != nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError(models.MsgInvalidToken))
	}

	return c.JSON(fiber.Map{})
}

// generateToken creates a signed JWT for the given user. tokenType is either
// "access" or "refresh" and controls the lifetime.
func (s *Server) generateToken(userID uint, tokenType string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	ttl := time.Duration(s.config.AccessTTLMin) * time.Minute
	if tokenType == "refresh" {
		ttl = time.Duration(s.config.RefreshTTLDays) * 24 * time.Hour
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        strconv.FormatUint(uint64(userID), 10),
		"iss":        tokenIssuer,
		"aud":        tokenAudience,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"jti":        uuid.NewString(),
		"token_type": tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
