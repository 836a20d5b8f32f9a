package handlers

import (
	"github.com/gofiber/fiber/v2"

	"linkup/dto"
	"linkup/internal/authctx"
	"linkup/internal/blobstore"
	"linkup/internal/notify"
	"linkup/internal/repository"
	"linkup/internal/session"
	"linkup/pkg/apperr"
	"linkup/pkg/logging"
	"linkup/services"
)

type PostHandler struct {
	Posts    *repository.PostRepository
	Users    *repository.UserRepository
	Blob     blobstore.Uploader
	Notifier notify.Notifier
	Logger   logging.Logger
}

// feedFor builds a feed core scoped to the request's authenticated identity.
func (h *PostHandler) feedFor(c *fiber.Ctx) (*services.FeedService, *session.Session, error) {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return nil, nil, apperr.Unauthenticated("sign in required")
	}
	u, err := h.Users.Get(c.Context(), uid)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, nil, apperr.Unauthenticated("unknown user")
		}
		return nil, nil, err
	}
	sess := session.ForIdentity(u.Identity())
	feed := services.NewFeedService(h.Posts, h.Blob, h.Notifier, sess, h.Logger)
	return feed, sess, nil
}

// GET /posts
func (h *PostHandler) List(c *fiber.Ctx) error {
	posts, err := h.Posts.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GET /posts/:postId
func (h *PostHandler) Get(c *fiber.Ctx) error {
	p, err := h.Posts.Get(c.Context(), c.Params("postId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// POST /posts
func (h *PostHandler) Create(c *fiber.Ctx) error {
	feed, _, err := h.feedFor(c)
	if err != nil {
		return respondError(c, err)
	}

	var body dto.CreatePostRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var media *services.Media
	if body.Media != nil {
		media = &services.Media{Source: body.Media.Source, Data: body.Media.Data}
	}

	if err := feed.Create(c.Context(), body.Content, media); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "created"})
}

// POST /posts/:postId/like
func (h *PostHandler) Like(c *fiber.Ctx) error {
	feed, sess, err := h.feedFor(c)
	if err != nil {
		return respondError(c, err)
	}

	postID := c.Params("postId")
	liked, err := feed.Like(c.Context(), postID, sess.UserID())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LikeResponse{PostID: postID, Liked: liked})
}

// POST /posts/:postId/comments
func (h *PostHandler) Comment(c *fiber.Ctx) error {
	feed, sess, err := h.feedFor(c)
	if err != nil {
		return respondError(c, err)
	}

	var body dto.CreateCommentRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	comment, err := feed.Comment(c.Context(), c.Params("postId"), body.Content, *sess.Current())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// PATCH /posts/:postId
func (h *PostHandler) Update(c *fiber.Ctx) error {
	feed, _, err := h.feedFor(c)
	if err != nil {
		return respondError(c, err)
	}

	var body dto.UpdatePostRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var media *services.Media
	if body.Media != nil {
		media = &services.Media{Source: body.Media.Source, Data: body.Media.Data}
	}

	if err := feed.Update(c.Context(), c.Params("postId"), body.Content, media); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "updated"})
}

// DELETE /posts/:postId
func (h *PostHandler) Delete(c *fiber.Ctx) error {
	feed, _, err := h.feedFor(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := feed.Delete(c.Context(), c.Params("postId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
