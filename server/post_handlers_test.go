package server

import (
	"fmt"
	"testing"

	"yatube/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPostsAnonymous(t *testing.T) {
	srv, app := setupTestServer(t)
	author, _ := createUser(t, srv, "author")

	for i := 0; i < 3; i++ {
		require.NoError(t, srv.db.Create(&models.Post{
			Text:     fmt.Sprintf("post %d", i),
			AuthorID: author.ID,
		}).Error)
	}

	resp := doJSON(t, app, "GET", "/api/posts/", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(3), body["count"])
	assert.Contains(t, body, "next")
	assert.Contains(t, body, "previous")
	results, ok := body["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 3)
}

func TestGetPostsPagination(t *testing.T) {
	srv, app := setupTestServer(t)
	author, _ := createUser(t, srv, "author")

	for i := 0; i < 5; i++ {
		require.NoError(t, srv.db.Create(&models.Post{
			Text:     fmt.Sprintf("post %d", i),
			AuthorID: author.ID,
		}).Error)
	}

	resp := doJSON(t, app, "GET", "/api/posts/?limit=2&offset=2", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(5), body["count"])
	assert.NotNil(t, body["next"])
	assert.NotNil(t, body["previous"])
	results := body["results"].([]any)
	assert.Len(t, results, 2)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	_, app := setupTestServer(t)

	resp := doJSON(t, app, "POST", "/api/posts/", map[string]any{"text": "hi"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.MsgNoCredentials, detailOf(t, resp))
}

func TestCreatePostForcesAuthor(t *testing.T) {
	srv, app := setupTestServer(t)
	user, token := createUser(t, srv, "writer")
	other, _ := createUser(t, srv, "other")

	// author_id in the payload must be ignored
	resp := doJSON(t, app, "POST", "/api/posts/", map[string]any{
		"text":      "my post",
		"author_id": other.ID,
	}, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(user.ID), body["author_id"])

	var post models.Post
	require.NoError(t, srv.db.First(&post).Error)
	assert.Equal(t, user.ID, post.AuthorID)
}

func TestCreatePostValidation(t *testing.T) {
	srv, app := setupTestServer(t)
	_, token := createUser(t, srv, "writer")

	resp := doJSON(t, app, "POST", "/api/posts/", map[string]any{"image": "x.png"}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	srv.db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreatePostUnknownGroup(t *testing.T) {
	srv, app := setupTestServer(t)
	_, token := createUser(t, srv, "writer")

	resp := doJSON(t, app, "POST", "/api/posts/", map[string]any{
		"text":  "hi",
		"group": 42,
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePostWithGroup(t *testing.T) {
	srv, app := setupTestServer(t)
	_, token := createUser(t, srv, "writer")

	group := &models.Group{Title: "Техно", Slug: "tech", Description: "t"}
	require.NoError(t, srv.db.Create(group).Error)

	resp := doJSON(t, app, "POST", "/api/posts/", map[string]any{
		"text":  "hi",
		"group": group.ID,
	}, token)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(group.ID), body["group"])
}

func TestGetPostNotFound(t *testing.T) {
	_, app := setupTestServer(t)

	resp := doJSON(t, app, "GET", "/api/posts/99", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.MsgPageNotFound, detailOf(t, resp))
}

func TestUpdatePostByNonAuthor(t *testing.T) {
	srv, app := setupTestServer(t)
	author, _ := createUser(t, srv, "alice")
	_, bobToken := createUser(t, srv, "bob")

	post := &models.Post{Text: "original", AuthorID: author.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/posts/%d", post.ID),
		map[string]any{"text": "hacked"}, bobToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.MsgNotEnoughRights, detailOf(t, resp))

	var stored models.Post
	require.NoError(t, srv.db.First(&stored, post.ID).Error)
	assert.Equal(t, "original", stored.Text)
}

func TestUpdatePostByAuthor(t *testing.T) {
	srv, app := setupTestServer(t)
	author, token := createUser(t, srv, "alice")

	post := &models.Post{Text: "original", AuthorID: author.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/posts/%d", post.ID),
		map[string]any{"text": "edited"}, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Post
	require.NoError(t, srv.db.First(&stored, post.ID).Error)
	assert.Equal(t, "edited", stored.Text)
}

func TestUpdatePostRequiresText(t *testing.T) {
	srv, app := setupTestServer(t)
	author, token := createUser(t, srv, "alice")

	post := &models.Post{Text: "original", AuthorID: author.ID}
	require.NoError(t, srv.db.Create(post).Error)

	// full replacement: text is required
	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/posts/%d", post.ID),
		map[string]any{"image": "x.png"}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPatchPostPartial(t *testing.T) {
	srv, app := setupTestServer(t)
	author, token := createUser(t, srv, "alice")

	post := &models.Post{Text: "original", Image: "old.png", AuthorID: author.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp := doJSON(t, app, "PATCH", fmt.Sprintf("/api/posts/%d", post.ID),
		map[string]any{"image": "new.png"}, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Post
	require.NoError(t, srv.db.First(&stored, post.ID).Error)
	assert.Equal(t, "original", stored.Text)
	assert.Equal(t, "new.png", stored.Image)
}

func TestPatchPostByNonAuthor(t *testing.T) {
	srv, app := setupTestServer(t)
	author, _ := createUser(t, srv, "alice")
	_, bobToken := createUser(t, srv, "bob")

	post := &models.Post{Text: "original", AuthorID: author.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp := doJSON(t, app, "PATCH", fmt.Sprintf("/api/posts/%d", post.ID),
		map[string]any{"text": "hacked"}, bobToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeletePostByNonAuthor(t *testing.T) {
	srv, app := setupTestServer(t)
	author, _ := createUser(t, srv, "alice")
	_, bobToken := createUser(t, srv, "bob")

	post := &models.Post{Text: "keep me", AuthorID: author.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/api/posts/%d", post.ID), nil, bobToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.MsgNotEnoughRights, detailOf(t, resp))

	// still retrievable
	resp = doJSON(t, app, "GET", fmt.Sprintf("/api/posts/%d", post.ID), nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDeletePostByAuthor(t *testing.T) {
	srv, app := setupTestServer(t)
	author, token := createUser(t, srv, "alice")

	post := &models.Post{Text: "bye", AuthorID: author.ID}
	require.NoError(t, srv.db.Create(post).Error)

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/api/posts/%d", post.ID), nil, token)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, "GET", fmt.Sprintf("/api/posts/%d", post.ID), nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
