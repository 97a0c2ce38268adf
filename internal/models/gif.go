package models

import "time"

// Status is the moderation state of an uploaded GIF.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Rating is the content rating of a GIF.
type Rating string

const (
	RatingG    Rating = "g"
	RatingPG   Rating = "pg"
	RatingPG13 Rating = "pg-13"
	RatingR    Rating = "r"
)

// Valid reports whether r is one of the known content ratings.
func (r Rating) Valid() bool {
	switch r {
	case RatingG, RatingPG, RatingPG13, RatingR:
		return true
	}
	return false
}

// GIF represents a piece of uploaded animated media. The embedded User is a
// snapshot of the owner at upload time, not a live reference. After creation
// only Status is ever mutated (by moderation); records are never deleted.
type GIF struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Thumbnail string   `json:"thumbnail"`
	User      User     `json:"user"`
	Tags      []string `json:"tags"`
	Views     int      `json:"views"`
	Likes     int      `json:"likes"`
	Rating    Rating   `json:"rating"`
	CreatedAt string   `json:"createdAt"`
	Category  string   `json:"category"`
	Status    Status   `json:"status"`
}

// Valid reports whether a deserialized GIF record satisfies the schema.
func (g GIF) Valid() bool {
	return g.ID != "" && g.Title != "" && g.URL != "" &&
		g.Views >= 0 && g.Likes >= 0 &&
		g.Rating.Valid() && g.Status.Valid()
}

// Timestamp returns the ISO-8601 string used for CreatedAt fields.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
