package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gifboard/internal/models"
	"gifboard/internal/notifications"
	"gifboard/internal/observability"
	"gifboard/internal/store"

	"github.com/google/uuid"
)

// tagger resolves tags for a new upload. Satisfied by suggest.Adapter.
type tagger interface {
	TagsForUpload(ctx context.Context, title, description string) []string
}

// GIFService implements upload, moderation and catalog queries over the
// shared application state.
type GIFService struct {
	store    *store.Store
	tagger   tagger
	notifier *notifications.Notifier
}

// UploadInput is the input for creating a new GIF record.
type UploadInput struct {
	Title       string
	Description string
	URL         string
	Thumbnail   string
	Category    string
	Tags        []string
	Rating      models.Rating
}

// NewGIFService returns a new GIFService.
func NewGIFService(st *store.Store, tg tagger, notifier *notifications.Notifier) *GIFService {
	return &GIFService{store: st, tagger: tg, notifier: notifier}
}

// Upload creates a record for the given owner and adds it to the front of
// the collection. Admin uploads are approved immediately; everyone else
// enters the moderation queue. Missing tags are resolved through the
// suggestion service, which guarantees a non-empty fallback.
func (s *GIFService) Upload(ctx context.Context, owner models.User, in UploadInput) (models.GIF, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.GIF{}, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.URL) == "" {
		return models.GIF{}, models.NewValidationError("A GIF URL is required")
	}

	rating := in.Rating
	if rating == "" {
		rating = models.RatingG
	}
	if !rating.Valid() {
		return models.GIF{}, models.NewValidationError("Invalid rating")
	}

	thumbnail := in.Thumbnail
	if thumbnail == "" {
		thumbnail = in.URL
	}

	tags := in.Tags
	if len(tags) == 0 && s.tagger != nil {
		tags = s.tagger.TagsForUpload(ctx, in.Title, in.Description)
	}
	if len(tags) == 0 {
		tags = []string{"animated", "gif"}
	}

	status := models.StatusPending
	if owner.IsAdmin {
		status = models.StatusApproved
	}

	gif := models.GIF{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(in.Title),
		URL:       in.URL,
		Thumbnail: thumbnail,
		User:      owner,
		Tags:      tags,
		Rating:    rating,
		CreatedAt: models.Timestamp(time.Now()),
		Category:  in.Category,
		Status:    status,
	}

	s.store.Upload(ctx, gif)
	observability.UploadsTotal.WithLabelValues(string(status)).Inc()

	if s.notifier != nil {
		if err := s.notifier.PublishModeration(ctx, notifications.Event{
			Type:     notifications.EventUploaded,
			GIFID:    gif.ID,
			Title:    gif.Title,
			Username: owner.Username,
			Status:   status,
		}); err != nil {
			slog.WarnContext(ctx, "moderation event publish failed", "gif_id", gif.ID, "err", err)
		}
	}

	return gif, nil
}

// Moderate records an approve/reject decision. An unknown id is reported
// through the returned bool, never as an error.
func (s *GIFService) Moderate(ctx context.Context, id string, status models.Status) (bool, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return false, models.NewValidationError("Status must be approved or rejected")
	}

	updated := s.store.UpdateStatus(ctx, id, status)
	if !updated {
		return false, nil
	}

	if s.notifier != nil {
		if err := s.notifier.PublishModeration(ctx, notifications.Event{
			Type:   notifications.EventReviewed,
			GIFID:  id,
			Status: status,
		}); err != nil {
			slog.WarnContext(ctx, "moderation event publish failed", "gif_id", id, "err", err)
		}
	}

	return true, nil
}

// Approved returns the publicly visible collection, newest first.
func (s *GIFService) Approved() []models.GIF {
	return filterGIFs(s.store.GIFs(), func(g models.GIF) bool {
		return g.Status == models.StatusApproved
	})
}

// Pending returns the moderation queue, newest first.
func (s *GIFService) Pending() []models.GIF {
	return filterGIFs(s.store.GIFs(), func(g models.GIF) bool {
		return g.Status == models.StatusPending
	})
}

// PendingCount reports the moderation queue depth.
func (s *GIFService) PendingCount() int {
	return len(s.Pending())
}

// ByID returns any record by id, regardless of status. Moderators need to
// see pending and rejected records; handlers decide visibility.
func (s *GIFService) ByID(id string) (models.GIF, bool) {
	for _, g := range s.store.GIFs() {
		if g.ID == id {
			return g, true
		}
	}
	return models.GIF{}, false
}

// ByCategory returns approved records in the named category,
// case-insensitively.
func (s *GIFService) ByCategory(name string) []models.GIF {
	return filterGIFs(s.store.GIFs(), func(g models.GIF) bool {
		return g.Status == models.StatusApproved && strings.EqualFold(g.Category, name)
	})
}

// Search returns approved records whose title or tags contain the query,
// case-insensitively. An empty query matches nothing.
func (s *GIFService) Search(query string) []models.GIF {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.GIF{}
	}
	return filterGIFs(s.store.GIFs(), func(g models.GIF) bool {
		if g.Status != models.StatusApproved {
			return false
		}
		if strings.Contains(strings.ToLower(g.Title), q) {
			return true
		}
		for _, tag := range g.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

func filterGIFs(gifs []models.GIF, keep func(models.GIF) bool) []models.GIF {
	out := make([]models.GIF, 0, len(gifs))
	for _, g := range gifs {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}
