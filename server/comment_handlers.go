package server

import (
	"errors"

	"yatube/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// getCommentByParams resolves the comment referenced by the path, verifying
// that it belongs to the post referenced by the same path. notFoundMsg is the
// detail used when the comment is absent (the parent post being absent is
// always a page-not-found).
func (s *Server) getCommentByParams(c *fiber.Ctx, notFoundMsg string) (*models.Comment, error) {
	post, err := s.getPostByParam(c, "post_id")
	if err != nil {
		return nil, err
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, models.NewNotFoundError(notFoundMsg)
	}

	comment, err := s.commentRepo.GetByID(c.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comment.PostID != post.ID {
		return nil, models.NewNotFoundError(notFoundMsg)
	}
	return comment, nil
}

// GetComments handles GET /api/posts/:post_id/comments/ (public, scoped to
// the parent post).
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()

	post, err := s.getPostByParam(c, "post_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	limit, offset := pageParams(c)

	count, err := s.commentRepo.CountByPost(ctx, post.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID, limit, offset)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(paginated(c, count, limit, offset, comments))
}

// GetComment handles GET /api/posts/:post_id/comments/:id (public).
func (s *Server) GetComment(c *fiber.Ctx) error {
	comment, err := s.getCommentByParams(c, models.MsgPageNotFound)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/posts/:post_id/comments/. The parent post
// must exist before anything is persisted; post and author are set
// server-side from the path and principal, overriding any payload values.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()

	post, err := s.getPostByParam(c, "post_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Невалидное тело запроса."))
	}
	if req.Text == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Обязательное поле: text."))
	}

	comment := &models.Comment{
		Text:     req.Text,
		AuthorID: s.principal(c),
		PostID:   post.ID,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateComment handles PUT /api/posts/:post_id/comments/:id — full
// replacement. The same author-only rule as every other mutation applies.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	comment, err := s.getCommentByParams(c, models.MsgCommentNotFound)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.requireAuthor(c, comment.AuthorID); err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Невалидное тело запроса."))
	}
	if req.Text == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Обязательное поле: text."))
	}

	comment.Text = req.Text
	if err := s.commentRepo.Update(c.Context(), comment); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(comment)
}

// PatchComment handles PATCH /api/posts/:post_id/comments/:id — partial
// update, author only.
func (s *Server) PatchComment(c *fiber.Ctx) error {
	comment, err := s.getCommentByParams(c, models.MsgCommentNotFound)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.requireAuthor(c, comment.AuthorID); err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Text *string `json:"text"`
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
		comment.Text = *req.Text
	}

	if err := s.commentRepo.Update(c.Context(), comment); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:post_id/comments/:id — author
// only, 204 on success.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	comment, err := s.getCommentByParams(c, models.MsgCommentNotFound)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.requireAuthor(c, comment.AuthorID); err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.commentRepo.Delete(c.Context(), comment.ID); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
