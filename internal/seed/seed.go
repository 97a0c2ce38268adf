// Package seed provides the fixed reference data used to bootstrap
// application state when no durable state exists, plus helpers to create
// demo data for development and testing.
package seed

import (
	_ "embed"
	"log"

	"gifboard/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yml
var categoriesYAML []byte

// Users returns the fixed initial user set.
func Users() []models.User {
	return []models.User{
		{
			ID:          "u1",
			Username:    "giphy-pro",
			DisplayName: "GIPHY Pro",
			Avatar:      "https://picsum.photos/seed/user1/200",
			Followers:   15400,
			Following:   120,
			IsVerified:  true,
			IsAdmin:     true,
		},
		{
			ID:          "u2",
			Username:    "animator99",
			DisplayName: "Creative Cat",
			Avatar:      "https://picsum.photos/seed/user2/200",
			Followers:   850,
			Following:   340,
			IsVerified:  false,
		},
	}
}

// UserByUsername looks up a seed user by username. Returns nil when the
// username is not part of the seed set.
func UserByUsername(username string) *models.User {
	for _, u := range Users() {
		if u.Username == username {
			return &u
		}
	}
	return nil
}

// Categories returns the static taxonomy, parsed from the embedded YAML
// document. The data is compiled in, so a parse failure is a programming
// error and panics at startup rather than surfacing a runtime error path.
func Categories() []models.Category {
	var cats []models.Category
	if err := yaml.Unmarshal(categoriesYAML, &cats); err != nil {
		log.Panicf("embedded categories.yml is invalid: %v", err)
	}
	return cats
}

// GIFs returns the fixed initial GIF collection, newest last in upload order
// (the collection itself is ordered most-recent-first by prepending).
func GIFs() []models.GIF {
	users := Users()
	return []models.GIF{
		{
			ID:        "g1",
			Title:     "Happy Dance",
			URL:       "https://media.giphy.com/media/vO8F4fYQ8D0Na/giphy.gif",
			Thumbnail: "https://media.giphy.com/media/vO8F4fYQ8D0Na/giphy_s.gif",
			User:      users[0],
			Tags:      []string{"happy", "dance", "excited"},
			Views:     12500,
			Likes:     450,
			Rating:    models.RatingG,
			CreatedAt: "2023-10-01T00:00:00Z",
			Category:  "Reactions",
			Status:    models.StatusApproved,
		},
		{
			ID:        "g2",
			Title:     "Mind Blown",
			URL:       "https://media.giphy.com/media/26ufdipLchak65Aph/giphy.gif",
			Thumbnail: "https://media.giphy.com/media/26ufdipLchak65Aph/giphy_s.gif",
			User:      users[1],
			Tags:      []string{"wow", "mind blown", "shock"},
			Views:     89000,
			Likes:     3200,
			Rating:    models.RatingG,
			CreatedAt: "2023-11-15T00:00:00Z",
			Category:  "Reactions",
			Status:    models.StatusApproved,
		},
		{
			ID:        "g3",
			Title:     "Coding Time",
			URL:       "https://media.giphy.com/media/o0vwzuFwCGAFO/giphy.gif",
			Thumbnail: "https://media.giphy.com/media/o0vwzuFwCGAFO/giphy_s.gif",
			User:      users[0],
			Tags:      []string{"code", "hacker", "typing"},
			Views:     5400,
			Likes:     120,
			Rating:    models.RatingPG,
			CreatedAt: "2023-12-05T00:00:00Z",
			Category:  "Entertainment",
			Status:    models.StatusApproved,
		},
		{
			ID:        "g4",
			Title:     "Cat Typing Fast",
			URL:       "https://media.giphy.com/media/3o7TKMGf8nS9R6N9fG/giphy.gif",
			Thumbnail: "https://media.giphy.com/media/3o7TKMGf8nS9R6N9fG/giphy_s.gif",
			User:      users[1],
			Tags:      []string{"cat", "funny", "work"},
			Views:     120000,
			Likes:     5600,
			Rating:    models.RatingG,
			CreatedAt: "2024-01-10T00:00:00Z",
			Category:  "Artists",
			Status:    models.StatusApproved,
		},
	}
}
