// Package models contains data structures for the application's domain models.
package models

// User represents an account on the platform. Records are immutable after
// creation; the session layer only ever swaps the whole record in or out.
// JSON field names match the persisted wire format of the stored records.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	IsVerified  bool   `json:"isVerified"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
}

// Valid reports whether a deserialized user record satisfies the schema.
// Stored JSON is never trusted blindly; a record failing this check is
// treated as absent.
func (u User) Valid() bool {
	return u.ID != "" && u.Username != "" && u.Followers >= 0 && u.Following >= 0
}
