package server

import (
	"strings"

	"gifboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories := s.Categories()
	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

// GetCategoryGIFs handles GET /api/categories/:name/gifs. The category name
// is matched case-insensitively; an unknown category is a 404.
func (s *Server) GetCategoryGIFs(c *fiber.Ctx) error {
	name := c.Params("name")

	var category *models.Category
	for _, cat := range s.Categories() {
		if strings.EqualFold(cat.Name, name) {
			category = &cat
			break
		}
	}
	if category == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Category", name))
	}

	gifs := s.gifService.ByCategory(category.Name)
	return c.JSON(fiber.Map{
		"category": category,
		"gifs":     gifs,
		"count":    len(gifs),
	})
}
