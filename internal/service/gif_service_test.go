package service

import (
	"context"
	"testing"

	"gifboard/internal/models"
	"gifboard/internal/notifications"
	"gifboard/internal/seed"
	"gifboard/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedTagger struct {
	tags  []string
	calls int
}

func (f *fixedTagger) TagsForUpload(_ context.Context, _, _ string) []string {
	f.calls++
	return f.tags
}

func setupGIFService(t *testing.T, tg tagger) (*GIFService, *store.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	st := store.New(rdb)
	st.Initialize(context.Background())

	return NewGIFService(st, tg, notifications.NewNotifier(rdb)), st
}

func regularUser() models.User {
	return models.User{ID: "u2", Username: "animator99", DisplayName: "Animation Nation", Avatar: "https://example.com/a.png"}
}

func adminUploader() models.User {
	u := regularUser()
	u.ID = "admin-1"
	u.Username = "admin"
	u.IsAdmin = true
	return u
}

func TestUploadRegularUserIsPending(t *testing.T) {
	svc, st := setupGIFService(t, &fixedTagger{tags: []string{"cats"}})

	gif, err := svc.Upload(context.Background(), regularUser(), UploadInput{
		Title: "New Cat",
		URL:   "https://example.com/cat.gif",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, gif.Status)
	assert.Equal(t, []string{"cats"}, gif.Tags)
	assert.Equal(t, models.RatingG, gif.Rating)
	// Missing thumbnail falls back to the GIF URL.
	assert.Equal(t, gif.URL, gif.Thumbnail)

	// Newest first.
	assert.Equal(t, gif.ID, st.GIFs()[0].ID)
	// Pending uploads are not publicly visible.
	for _, g := range svc.Approved() {
		assert.NotEqual(t, gif.ID, g.ID)
	}
}

func TestUploadAdminBypassesModeration(t *testing.T) {
	svc, _ := setupGIFService(t, &fixedTagger{tags: []string{"x"}})

	gif, err := svc.Upload(context.Background(), adminUploader(), UploadInput{
		Title: "Admin Post",
		URL:   "https://example.com/admin.gif",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, gif.Status)
	assert.Equal(t, gif.ID, svc.Approved()[0].ID)
}

func TestUploadProvidedTagsSkipTagger(t *testing.T) {
	tg := &fixedTagger{tags: []string{"unused"}}
	svc, _ := setupGIFService(t, tg)

	gif, err := svc.Upload(context.Background(), regularUser(), UploadInput{
		Title: "Tagged",
		URL:   "https://example.com/t.gif",
		Tags:  []string{"drums", "loop"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"drums", "loop"}, gif.Tags)
	assert.Zero(t, tg.calls)
}

func TestUploadValidation(t *testing.T) {
	svc, _ := setupGIFService(t, &fixedTagger{tags: []string{"x"}})
	ctx := context.Background()

	_, err := svc.Upload(ctx, regularUser(), UploadInput{URL: "https://example.com/x.gif"})
	assert.Error(t, err)

	_, err = svc.Upload(ctx, regularUser(), UploadInput{Title: "No URL"})
	assert.Error(t, err)

	_, err = svc.Upload(ctx, regularUser(), UploadInput{
		Title:  "Bad Rating",
		URL:    "https://example.com/x.gif",
		Rating: models.Rating("nc-17"),
	})
	assert.Error(t, err)
}

func TestModerate(t *testing.T) {
	svc, st := setupGIFService(t, &fixedTagger{tags: []string{"x"}})
	ctx := context.Background()

	gif, err := svc.Upload(ctx, regularUser(), UploadInput{
		Title: "Awaiting Review",
		URL:   "https://example.com/p.gif",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.PendingCount())

	updated, err := svc.Moderate(ctx, gif.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Zero(t, svc.PendingCount())
	assert.Equal(t, models.StatusApproved, st.GIFs()[0].Status)

	// Unknown id is a reported no-op, not an error.
	updated, err = svc.Moderate(ctx, "nope", models.StatusRejected)
	require.NoError(t, err)
	assert.False(t, updated)

	// Only terminal decisions are accepted.
	_, err = svc.Moderate(ctx, gif.ID, models.StatusPending)
	assert.Error(t, err)
}

func TestCatalogQueries(t *testing.T) {
	svc, _ := setupGIFService(t, &fixedTagger{tags: []string{"x"}})

	approved := svc.Approved()
	assert.Len(t, approved, len(seed.GIFs()))

	reactions := svc.ByCategory("Reactions")
	require.NotEmpty(t, reactions)
	for _, g := range reactions {
		assert.Equal(t, "Reactions", g.Category)
	}
	// Case-insensitive match.
	assert.Equal(t, len(reactions), len(svc.ByCategory("reactions")))

	g, ok := svc.ByID("g1")
	require.True(t, ok)
	assert.Equal(t, "Happy Dance", g.Title)

	_, ok = svc.ByID("missing")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	svc, _ := setupGIFService(t, &fixedTagger{tags: []string{"x"}})
	ctx := context.Background()

	byTitle := svc.Search("dance")
	require.NotEmpty(t, byTitle)
	assert.Equal(t, "g1", byTitle[0].ID)

	byTag := svc.Search("cat")
	require.NotEmpty(t, byTag)

	assert.Empty(t, svc.Search(""))
	assert.Empty(t, svc.Search("   "))
	assert.Empty(t, svc.Search("zzz-no-match"))

	// Pending uploads never show up in search.
	pending, err := svc.Upload(ctx, regularUser(), UploadInput{
		Title: "Dance Off",
		URL:   "https://example.com/d.gif",
	})
	require.NoError(t, err)
	for _, g := range svc.Search("dance") {
		assert.NotEqual(t, pending.ID, g.ID)
	}
}
