package server

import (
	"gifboard/internal/models"
	"gifboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetGIFs handles GET /api/gifs and returns the approved collection,
// newest first.
func (s *Server) GetGIFs(c *fiber.Ctx) error {
	gifs := s.gifService.Approved()
	return c.JSON(fiber.Map{
		"gifs":  gifs,
		"count": len(gifs),
	})
}

// SearchGIFs handles GET /api/gifs/search?q=
func (s *Server) SearchGIFs(c *fiber.Ctx) error {
	query := c.Query("q")
	gifs := s.gifService.Search(query)
	return c.JSON(fiber.Map{
		"gifs":  gifs,
		"count": len(gifs),
		"query": query,
	})
}

// GetGIF handles GET /api/gifs/:id. Records that are not approved are only
// visible to their owner and admins.
func (s *Server) GetGIF(c *fiber.Ctx) error {
	id := c.Params("id")
	gif, ok := s.gifService.ByID(id)
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("GIF", id))
	}

	if gif.Status != models.StatusApproved {
		isAdmin, _ := c.Locals("isAdmin").(bool)
		userID, _ := c.Locals("userID").(string)
		if !isAdmin && gif.User.ID != userID {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("GIF", id))
		}
	}

	return c.JSON(fiber.Map{
		"gif": gif,
	})
}

// UploadGIF handles POST /api/gifs. The uploader is the stored session user;
// admin uploads skip the moderation queue.
func (s *Server) UploadGIF(c *fiber.Ctx) error {
	owner := s.authService.CurrentUser()
	if owner == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Login required to upload"))
	}

	var req struct {
		Title       string        `json:"title"`
		Description string        `json:"description"`
		URL         string        `json:"url"`
		Thumbnail   string        `json:"thumbnail"`
		Category    string        `json:"category"`
		Tags        []string      `json:"tags"`
		Rating      models.Rating `json:"rating"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	gif, err := s.gifService.Upload(c.UserContext(), *owner, service.UploadInput{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Thumbnail:   req.Thumbnail,
		Category:    req.Category,
		Tags:        req.Tags,
		Rating:      req.Rating,
	})
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "VALIDATION_ERROR" {
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"gif": gif,
	})
}
