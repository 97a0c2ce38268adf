package server

import (
	"gifboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetModerationQueue handles GET /api/admin/queue and returns pending
// uploads, newest first.
func (s *Server) GetModerationQueue(c *fiber.Ctx) error {
	pending := s.gifService.Pending()
	return c.JSON(fiber.Map{
		"gifs":  pending,
		"count": len(pending),
	})
}

// ApproveGIF handles POST /api/admin/gifs/:id/approve
func (s *Server) ApproveGIF(c *fiber.Ctx) error {
	return s.moderate(c, models.StatusApproved)
}

// RejectGIF handles POST /api/admin/gifs/:id/reject
func (s *Server) RejectGIF(c *fiber.Ctx) error {
	return s.moderate(c, models.StatusRejected)
}

// moderate applies a review decision. A decision on an unknown id succeeds
// with updated=false rather than erroring, so double-clicking a review
// button after a record disappears is harmless.
func (s *Server) moderate(c *fiber.Ctx, status models.Status) error {
	id := c.Params("id")

	updated, err := s.gifService.Moderate(c.UserContext(), id, status)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	return c.JSON(fiber.Map{
		"id":      id,
		"status":  status,
		"updated": updated,
	})
}

// GetFeatureFlags handles GET /api/admin/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	return c.JSON(fiber.Map{
		"flags":    s.featureFlags.Raw(),
		"snapshot": s.featureFlags.Snapshot(userID),
	})
}
