package seed

import (
	"fmt"
	"math/rand"
	"time"

	"gifboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Factory builds randomized demo records. Intended for development and
// testing only; the fixed seed set above is what production bootstrap uses.
type Factory struct {
	rng *rand.Rand
}

// NewFactory creates a new Factory with its own deterministic-enough RNG.
func NewFactory() *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// BuildGIF constructs a pending demo upload owned by a random seed user.
// Overrides may adjust any field before the record is returned.
func (f *Factory) BuildGIF(overrides ...func(*models.GIF)) models.GIF {
	users := Users()
	owner := users[f.rng.Intn(len(users))]
	cats := Categories()
	cat := cats[f.rng.Intn(len(cats))]

	assetSeed := gofakeit.UUID()
	gif := models.GIF{
		ID:        uuid.NewString(),
		Title:     gofakeit.HipsterSentence(3),
		URL:       fmt.Sprintf("https://media.giphy.com/media/%s/giphy.gif", assetSeed),
		Thumbnail: fmt.Sprintf("https://media.giphy.com/media/%s/giphy_s.gif", assetSeed),
		User:      owner,
		Tags:      []string{gofakeit.Word(), gofakeit.Word(), gofakeit.Word()},
		Views:     f.rng.Intn(100000),
		Likes:     f.rng.Intn(5000),
		Rating:    models.RatingG,
		CreatedAt: models.Timestamp(time.Now().Add(-time.Duration(f.rng.Intn(90*24)) * time.Hour)),
		Category:  cat.Name,
		Status:    models.StatusPending,
	}

	for _, override := range overrides {
		override(&gif)
	}
	return gif
}

// BuildGIFs constructs n demo uploads.
func (f *Factory) BuildGIFs(n int, overrides ...func(*models.GIF)) []models.GIF {
	gifs := make([]models.GIF, 0, n)
	for i := 0; i < n; i++ {
		gifs = append(gifs, f.BuildGIF(overrides...))
	}
	return gifs
}
