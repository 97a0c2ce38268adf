package server

import (
	"strconv"

	"gifboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchSuggestions handles GET /api/suggest/search?q=&seq=.
//
// Clients send a monotonically increasing seq with each keystroke. The seq
// is echoed back, and a response whose seq has been superseded while the
// external call was in flight is returned empty and marked stale so it
// never replaces newer results.
func (s *Server) SearchSuggestions(c *fiber.Ctx) error {
	if s.suggestions == nil || !s.featureFlags.EnabledDefault("suggestions", c.IP()) {
		return c.JSON(fiber.Map{
			"suggestions": []string{},
			"seq":         0,
		})
	}

	key := suggestKey(c)

	var seq uint64
	if raw := c.Query("seq"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("seq must be a non-negative integer"))
		}
		seq = parsed
		s.sequencer.Observe(key, seq)
	} else {
		seq = s.sequencer.Next(key)
	}

	suggestions := s.suggestions.SearchSuggestions(c.UserContext(), c.Query("q"))

	if !s.sequencer.Current(key, seq) {
		return c.JSON(fiber.Map{
			"suggestions": []string{},
			"seq":         seq,
			"stale":       true,
		})
	}

	return c.JSON(fiber.Map{
		"suggestions": suggestions,
		"seq":         seq,
	})
}

// SuggestTags handles POST /api/suggest/tags and returns tags for an upload
// title. The fallback pair is returned when the external service cannot help.
func (s *Server) SuggestTags(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}

	tags := []string{"animated", "gif"}
	if s.suggestions != nil && s.featureFlags.EnabledDefault("suggestions", suggestKey(c)) {
		tags = s.suggestions.TagsForUpload(c.UserContext(), req.Title, req.Description)
	}

	return c.JSON(fiber.Map{
		"tags": tags,
	})
}

// suggestKey scopes sequence numbers to one client: the authenticated user
// when available, the remote IP otherwise.
func suggestKey(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok && uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.IP()
}
