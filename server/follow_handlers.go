package server

import (
	"errors"
	"fmt"

	"yatube/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetFollows handles GET /api/follow/. Authentication is enforced by the
// routing layer; only rows belonging to the principal are returned. The
// optional search parameter narrows by followed username, case-insensitively.
func (s *Server) GetFollows(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := s.principal(c)
	search := c.Query("search")
	limit, offset := pageParams(c)

	count, err := s.followRepo.CountByUser(ctx, userID, search)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	follows, err := s.followRepo.ListByUser(ctx, userID, search, limit, offset)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(paginated(c, count, limit, offset, follows))
}

// CreateFollow handles POST /api/follow/. The follower is always the
// principal. Checked in order: target must not be the principal, then the
// pair must not already exist. The store-level unique index closes the race
// between the existence check and the insert.
func (s *Server) CreateFollow(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := s.principal(c)

	var req struct {
		Following string `json:"following"`
	}
	if err := c.BodyParser(&req); err != nil || req.Following == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Обязательное поле: following."))
	}

	target, err := s.userRepo.GetByUsername(ctx, req.Following)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if target == nil {
		return models.RespondWithError(c,
			models.NewValidationError(fmt.Sprintf("Объект с username=%s не существует.", req.Following)))
	}

	if target.ID == userID {
		return models.RespondWithError(c,
			models.NewValidationError(models.MsgSelfFollow))
	}

	exists, err := s.followRepo.Exists(ctx, userID, target.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if exists {
		return models.RespondWithError(c,
			models.NewValidationError(models.MsgAlreadyFollows))
	}

	follow := &models.Follow{
		UserID:      userID,
		FollowingID: target.ID,
	}

	if err := s.followRepo.Create(ctx, follow); err != nil {
		// A concurrent create between the pre-check and the insert trips the
		// unique index; report it the same way as the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.RespondWithError(c,
				models.NewValidationError(models.MsgAlreadyFollows))
		}
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	created, err := s.followRepo.GetByID(ctx, follow.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteFollow handles DELETE /api/follow/:id — only the follower may remove
// their own subscription.
func (s *Server) DeleteFollow(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithError(c,
			models.NewNotFoundError(models.MsgPageNotFound))
	}

	follow, err := s.followRepo.GetByID(ctx, uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c,
			models.NewNotFoundError(models.MsgPageNotFound))
	}
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	if err := s.requireAuthor(c, follow.UserID); err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.followRepo.Delete(ctx, follow.ID); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
