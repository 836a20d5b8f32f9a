package handlers

import (
	"github.com/gofiber/fiber/v2"

	"linkup/internal/blobstore"
)

// MediaHandler serves uploaded blobs back out of GridFS. Registered only when
// the server runs against Mongo.
type MediaHandler struct {
	Blob *blobstore.GridFSUploader
}

// GET /media/:id
func (h *MediaHandler) Get(c *fiber.Ctx) error {
	data, contentType, err := h.Blob.Open(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
