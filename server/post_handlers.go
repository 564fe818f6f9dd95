package server

import (
	"errors"

	"yatube/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type postRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
	Group *uint  `json:"group"`
}

// getPostByParam resolves the post referenced by the named path parameter,
// translating a missing row into the NotFound taxonomy.
func (s *Server) getPostByParam(c *fiber.Ctx, param string) (*models.Post, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id < 1 {
		return nil, models.NewNotFoundError(models.MsgPageNotFound)
	}

	post, err := s.postRepo.GetByID(c.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError(models.MsgPageNotFound)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// checkGroup verifies a client-supplied group reference.
func (s *Server) checkGroup(c *fiber.Ctx, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	_, err := s.groupRepo.GetByID(c.Context(), *groupID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewValidationError("Указанное сообщество не существует.")
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetPosts handles GET /api/posts/ (public).
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	limit, offset := pageParams(c)

	count, err := s.postRepo.Count(ctx)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	posts, err := s.postRepo.List(ctx, limit, offset)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(paginated(c, count, limit, offset, posts))
}

// GetPost handles GET /api/posts/:id (public).
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.getPostByParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts/. The author is always the principal,
// regardless of anything in the payload.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Невалидное тело запроса."))
	}
	if req.Text == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Обязательное поле: text."))
	}
	if err := s.checkGroup(c, req.Group); err != nil {
		return models.RespondWithError(c, err)
	}

	post := &models.Post{
		Text:     req.Text,
		Image:    req.Image,
		GroupID:  req.Group,
		AuthorID: s.principal(c),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdatePost handles PUT /api/posts/:id — full replacement, author only.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	post, err := s.getPostByParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.requireAuthor(c, post.AuthorID); err != nil {
		return models.RespondWithError(c, err)
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Невалидное тело запроса."))
	}
	if req.Text == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Обязательное поле: text."))
	}
	if err := s.checkGroup(c, req.Group); err != nil {
		return models.RespondWithError(c, err)
	}

	post.Text = req.Text
	post.Image = req.Image
	post.GroupID = req.Group

	if err := s.postRepo.Update(c.Context(), post); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(post)
}

// PatchPost handles PATCH /api/posts/:id — partial update, author only.
func (s *Server) PatchPost(c *fiber.Ctx) error {
	post, err := s.getPostByParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.requireAuthor(c, post.AuthorID); err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Text  *string `json:"text"`
		Image *string `json:"image"`
		Group *uint   `json:"group"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Невалидное тело запроса."))
	}

	if req.Text != nil {
		if *req.Text == "" {
			return models.RespondWithError(c,
				models.NewValidationError("Поле text не может быть пустым."))
		}
		post.Text = *req.Text
	}
	if req.Image != nil {
		post.Image = *req.Image
	}
	if req.Group != nil {
		if err := s.checkGroup(c, req.Group); err != nil {
			return models.RespondWithError(c, err)
		}
		post.GroupID = req.Group
	}

	if err := s.postRepo.Update(c.Context(), post); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id — author only, 204 on success.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	post, err := s.getPostByParam(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.requireAuthor(c, post.AuthorID); err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.postRepo.Delete(c.Context(), post.ID); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
