package store

import (
	"context"
	"encoding/json"
	"testing"

	"gifboard/internal/models"
	"gifboard/internal/seed"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func testUser() models.User {
	return models.User{
		ID:          "u-test",
		Username:    "tester",
		DisplayName: "Tester",
		Avatar:      "https://example.com/a.png",
	}
}

func TestInitializeEmptyStoreUsesSeed(t *testing.T) {
	_, rdb := setupTestRedis(t)
	s := New(rdb)
	s.Initialize(context.Background())

	assert.Nil(t, s.CurrentUser())
	gifs := s.GIFs()
	require.Len(t, gifs, len(seed.GIFs()))
	assert.Equal(t, "g1", gifs[0].ID)
	for _, g := range gifs {
		assert.Equal(t, models.StatusApproved, g.Status)
	}
}

func TestInitializeNeverPersistsSeed(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	s := New(rdb)
	s.Initialize(context.Background())

	assert.False(t, mr.Exists(GifsKey))
	assert.False(t, mr.Exists(UserKey))
}

func TestLoginSurvivesRestart(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()

	s := New(rdb)
	s.Initialize(ctx)
	s.Login(ctx, testUser())

	reloaded := New(rdb)
	reloaded.Initialize(ctx)
	u := reloaded.CurrentUser()
	require.NotNil(t, u)
	assert.Equal(t, "tester", u.Username)
}

func TestLogoutClearsSessionAndKey(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()

	s := New(rdb)
	s.Initialize(ctx)
	s.Login(ctx, testUser())
	require.True(t, mr.Exists(UserKey))

	s.Logout(ctx)
	assert.Nil(t, s.CurrentUser())
	assert.False(t, mr.Exists(UserKey))

	// The collection is not touched by session changes.
	assert.Len(t, s.GIFs(), len(seed.GIFs()))
}

func TestUploadPrependsAndPersists(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()

	s := New(rdb)
	s.Initialize(ctx)

	gif := models.GIF{
		ID:        "g-new",
		Title:     "Fresh",
		URL:       "https://example.com/fresh.gif",
		Thumbnail: "https://example.com/fresh-thumb.gif",
		User:      testUser(),
		Tags:      []string{"fresh"},
		Rating:    models.RatingG,
		CreatedAt: "2026-08-28T00:00:00Z",
		Category:  "reactions",
		Status:    models.StatusPending,
	}
	s.Upload(ctx, gif)

	gifs := s.GIFs()
	require.Len(t, gifs, len(seed.GIFs())+1)
	assert.Equal(t, "g-new", gifs[0].ID)

	raw, err := mr.Get(GifsKey)
	require.NoError(t, err)
	var stored []models.GIF
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.NotEmpty(t, stored)
	assert.Equal(t, "g-new", stored[0].ID)
}

func TestUpdateStatusMutatesOnlyStatus(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()

	s := New(rdb)
	s.Initialize(ctx)
	before := s.GIFs()

	ok := s.UpdateStatus(ctx, "g2", models.StatusRejected)
	assert.True(t, ok)

	after := s.GIFs()
	require.Len(t, after, len(before))
	for i := range after {
		if after[i].ID == "g2" {
			assert.Equal(t, models.StatusRejected, after[i].Status)
			assert.Equal(t, before[i].Title, after[i].Title)
			assert.Equal(t, before[i].Views, after[i].Views)
			assert.Equal(t, before[i].CreatedAt, after[i].CreatedAt)
			continue
		}
		assert.Equal(t, before[i], after[i])
	}
}

func TestUpdateStatusUnknownIDIsNoOp(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()

	s := New(rdb)
	s.Initialize(ctx)

	ok := s.UpdateStatus(ctx, "does-not-exist", models.StatusApproved)
	assert.False(t, ok)
	assert.Len(t, s.GIFs(), len(seed.GIFs()))
	// No persist happens for a miss.
	assert.False(t, mr.Exists(GifsKey))
}

func TestInitializeMalformedCollectionFallsBack(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	require.NoError(t, mr.Set(GifsKey, "{not json"))

	s := New(rdb)
	s.Initialize(context.Background())
	assert.Len(t, s.GIFs(), len(seed.GIFs()))
}

func TestInitializeSchemaInvalidCollectionFallsBack(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	// Valid JSON, but a record missing required fields.
	require.NoError(t, mr.Set(GifsKey, `[{"id":"x1","title":""}]`))

	s := New(rdb)
	s.Initialize(context.Background())
	gifs := s.GIFs()
	require.Len(t, gifs, len(seed.GIFs()))
	assert.Equal(t, "g1", gifs[0].ID)
}

func TestInitializeDuplicateIDsFallBack(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	g := seed.GIFs()[0]
	b, err := json.Marshal([]models.GIF{g, g})
	require.NoError(t, err)
	require.NoError(t, mr.Set(GifsKey, string(b)))

	s := New(rdb)
	s.Initialize(context.Background())
	assert.Len(t, s.GIFs(), len(seed.GIFs()))
}

func TestInitializeMalformedSessionStartsLoggedOut(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	require.NoError(t, mr.Set(UserKey, `{"id":""}`))

	s := New(rdb)
	s.Initialize(context.Background())
	assert.Nil(t, s.CurrentUser())
	// The collection still loads normally.
	assert.Len(t, s.GIFs(), len(seed.GIFs()))
}

func TestNilClientDegradesToInMemory(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.Initialize(ctx)

	s.Login(ctx, testUser())
	require.NotNil(t, s.CurrentUser())

	s.Upload(ctx, models.GIF{
		ID:        "g-mem",
		Title:     "Ephemeral",
		URL:       "https://example.com/e.gif",
		Thumbnail: "https://example.com/e-thumb.gif",
		User:      testUser(),
		Tags:      []string{"x"},
		Rating:    models.RatingG,
		CreatedAt: "2026-08-28T00:00:00Z",
		Category:  "reactions",
		Status:    models.StatusPending,
	})
	assert.Equal(t, "g-mem", s.GIFs()[0].ID)

	ok := s.UpdateStatus(ctx, "g-mem", models.StatusApproved)
	assert.True(t, ok)
}

func TestSnapshotsAreCopies(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()

	s := New(rdb)
	s.Initialize(ctx)

	gifs := s.GIFs()
	gifs[0].Title = "tampered"
	assert.NotEqual(t, "tampered", s.GIFs()[0].Title)

	u := models.User{ID: "u-x", Username: "x", DisplayName: "X", Avatar: "https://example.com/x.png"}
	s.Login(ctx, u)
	cu := s.CurrentUser()
	cu.Username = "tampered"
	assert.Equal(t, "x", s.CurrentUser().Username)
}
