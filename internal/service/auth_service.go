// Package service provides application business logic (auth, uploads, catalog).
package service

import (
	"context"
	"fmt"
	"strings"

	"gifboard/internal/kv"
	"gifboard/internal/models"
	"gifboard/internal/seed"
	"gifboard/internal/store"
	"gifboard/internal/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// CredKeyPrefix namespaces stored signup credentials in the key-value store.
const CredKeyPrefix = "giphy_cred:"

// seedPassword is the shared demo password accepted for every built-in
// seed account.
const seedPassword = "password"

// credential is the stored record for a signed-up account: the full user
// snapshot plus a bcrypt hash, keyed by username.
type credential struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"passwordHash"`
}

// AdminAccount describes the built-in moderator credentials from config.
type AdminAccount struct {
	Username string
	Password string
}

// AuthService implements the simulated login, signup and logout flows. No
// external identity provider is involved: the admin account comes from
// config, seed accounts share a demo password, and signups are stored as
// bcrypt credentials in the key-value store.
type AuthService struct {
	store *store.Store
	rdb   *redis.Client
	admin AdminAccount
}

// NewAuthService returns a new AuthService.
func NewAuthService(st *store.Store, rdb *redis.Client, admin AdminAccount) *AuthService {
	return &AuthService{store: st, rdb: rdb, admin: admin}
}

// Login authenticates username/password and establishes the session.
// Three credential sources are checked in order: the configured admin
// account, the built-in seed accounts, and stored signup credentials.
// A failed login leaves any existing session untouched.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	if username == s.admin.Username && password == s.admin.Password {
		user := adminUser(s.admin.Username)
		s.store.Login(ctx, user)
		return &user, nil
	}

	if seeded := seed.UserByUsername(username); seeded != nil && password == seedPassword {
		s.store.Login(ctx, *seeded)
		return seeded, nil
	}

	var cred credential
	found, err := kv.GetJSON(ctx, s.rdb, CredKeyPrefix+username, &cred)
	if err == nil && found {
		if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) == nil {
			s.store.Login(ctx, cred.User)
			return &cred.User, nil
		}
	}

	return nil, models.NewUnauthorizedError("Invalid username or password")
}

// Signup creates a new account, stores its credential, and logs it in.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if username == s.admin.Username || seed.UserByUsername(username) != nil {
		return nil, models.NewValidationError("Username is already taken")
	}

	var existing credential
	found, err := kv.GetJSON(ctx, s.rdb, CredKeyPrefix+username, &existing)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if found {
		return nil, models.NewValidationError("Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := models.User{
		ID:          uuid.New().String(),
		Username:    username,
		DisplayName: displayNameFor(username),
		Avatar:      avatarFor(username),
	}

	if err := kv.SetJSON(ctx, s.rdb, CredKeyPrefix+username, credential{
		User:         user,
		PasswordHash: string(hash),
	}); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.store.Login(ctx, user)
	return &user, nil
}

// Logout clears the current session. Logging out while logged out is fine.
func (s *AuthService) Logout(ctx context.Context) {
	s.store.Logout(ctx)
}

// CurrentUser returns the session user, or nil when logged out.
func (s *AuthService) CurrentUser() *models.User {
	return s.store.CurrentUser()
}

func adminUser(username string) models.User {
	return models.User{
		ID:          "admin-1",
		Username:    username,
		DisplayName: "System Admin",
		Avatar:      avatarFor(username),
		IsVerified:  true,
		IsAdmin:     true,
	}
}

func displayNameFor(username string) string {
	if username == "" {
		return username
	}
	return strings.ToUpper(username[:1]) + username[1:]
}

func avatarFor(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", username)
}
