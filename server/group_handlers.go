package server

import (
	"errors"
	"fmt"
	"time"

	"yatube/cache"
	"yatube/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Groups never change through the API, so retrieve responses can sit in
// redis for a while.
const groupCacheTTL = 5 * time.Minute

// GetGroups handles GET /api/groups/ (public).
func (s *Server) GetGroups(c *fiber.Ctx) error {
	ctx := c.Context()
	limit, offset := pageParams(c)

	count, err := s.groupRepo.Count(ctx)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	groups, err := s.groupRepo.List(ctx, limit, offset)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(paginated(c, count, limit, offset, groups))
}

// GetGroup handles GET /api/groups/:id (public), read-through cached.
func (s *Server) GetGroup(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithError(c,
			models.NewNotFoundError(models.MsgPageNotFound))
	}

	var group models.Group
	err = cache.CacheAside(ctx, fmt.Sprintf("group:%d", id), &group, groupCacheTTL, func() error {
		g, err := s.groupRepo.GetByID(ctx, uint(id))
		if err != nil {
			return err
		}
		group = *g
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c,
			models.NewNotFoundError(models.MsgPageNotFound))
	}
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(group)
}
