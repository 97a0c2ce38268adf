// Package store owns the in-memory session and GIF collection and mediates
// all reads and writes to durable key-value storage.
package store

import (
	"context"
	"log/slog"
	"sync"

	"gifboard/internal/kv"
	"gifboard/internal/models"
	"gifboard/internal/observability"
	"gifboard/internal/seed"

	"github.com/redis/go-redis/v9"
)

// Storage keys. Values are JSON-encoded strings.
const (
	UserKey = "giphy_user"
	GifsKey = "giphy_gifs"
)

// Store is the single source of truth for the current session and the GIF
// collection. All mutation goes through its methods; the mutex serializes
// mutations so each operation runs to completion before the next, matching
// the one-turn-at-a-time execution model the stored format was designed for.
//
// A nil Redis client degrades the store to in-memory-only state: operations
// still work, nothing survives a restart.
type Store struct {
	rdb *redis.Client

	mu   sync.RWMutex
	user *models.User
	gifs []models.GIF
}

// New creates a Store backed by the given client. Call Initialize before use.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Initialize loads durable state. An absent, malformed, or schema-invalid
// user record leaves the session absent; an absent, malformed, or
// schema-invalid collection falls back to the built-in seed list. Stored
// JSON is never trusted blindly.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user models.User
	found, err := kv.GetJSON(ctx, s.rdb, UserKey, &user)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "stored session unreadable, starting logged out", "key", UserKey, "err", err)
	case found && !user.Valid():
		slog.WarnContext(ctx, "stored session failed schema check, starting logged out", "key", UserKey)
	case found:
		s.user = &user
	}

	var gifs []models.GIF
	found, err = kv.GetJSON(ctx, s.rdb, GifsKey, &gifs)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "stored collection unreadable, using seed data", "key", GifsKey, "err", err)
		s.gifs = seed.GIFs()
	case !found:
		s.gifs = seed.GIFs()
	case !validCollection(gifs):
		slog.WarnContext(ctx, "stored collection failed schema check, using seed data", "key", GifsKey)
		s.gifs = seed.GIFs()
	default:
		s.gifs = gifs
	}
}

// validCollection checks every record and rejects duplicate ids.
func validCollection(gifs []models.GIF) bool {
	seen := make(map[string]struct{}, len(gifs))
	for _, g := range gifs {
		if !g.Valid() {
			return false
		}
		if _, dup := seen[g.ID]; dup {
			return false
		}
		seen[g.ID] = struct{}{}
	}
	return true
}

// CurrentUser returns a copy of the session user, or nil when logged out.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// GIFs returns a snapshot of the collection, most recent first.
func (s *Store) GIFs() []models.GIF {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GIF, len(s.gifs))
	copy(out, s.gifs)
	return out
}

// Login sets the current session and persists it. A subsequent reload
// restores the same session until Logout is called.
func (s *Store) Login(ctx context.Context, user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user

	if err := kv.SetJSON(ctx, s.rdb, UserKey, user); err != nil {
		slog.WarnContext(ctx, "session persist failed, continuing in-memory", "key", UserKey, "err", err)
	}
}

// Logout clears the current session and removes it from storage. The GIF
// collection is untouched.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil

	if err := kv.Delete(ctx, s.rdb, UserKey); err != nil {
		slog.WarnContext(ctx, "session removal failed", "key", UserKey, "err", err)
	}
}

// Upload prepends gif to the collection (newest first is insertion order,
// not a timestamp sort) and re-persists the whole collection.
func (s *Store) Upload(ctx context.Context, gif models.GIF) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gifs = append([]models.GIF{gif}, s.gifs...)
	s.persistLocked(ctx)
}

// UpdateStatus replaces the status of the record with the given id, leaving
// every other field and the collection order unchanged. An unknown id is a
// silent no-op, not an error. Returns whether a record was updated.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.gifs {
		if s.gifs[i].ID == id {
			s.gifs[i].Status = status
			s.persistLocked(ctx)
			return true
		}
	}
	return false
}

// persistLocked writes the full collection back to durable storage. The
// caller must hold the write lock.
//
// An empty collection is deliberately never persisted: the absent key is
// what selects the seed fallback on the next load, and since records are
// never deleted an empty collection is not a reachable state anyway.
func (s *Store) persistLocked(ctx context.Context) {
	if len(s.gifs) == 0 {
		return
	}
	defer observability.TrackPersist(GifsKey)()
	if err := kv.SetJSON(ctx, s.rdb, GifsKey, s.gifs); err != nil {
		slog.WarnContext(ctx, "collection persist failed, continuing in-memory", "key", GifsKey, "err", err)
	}
}
