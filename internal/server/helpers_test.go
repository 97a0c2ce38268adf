package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gifboard/internal/config"
	"gifboard/internal/store"
	"gifboard/internal/suggest"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _ []suggest.ChatMessage) (string, error) {
	return f.response, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Port:          "8375",
		JWTSecret:     "test_secret",
		Env:           "test",
		AdminUsername: "admin",
		AdminPassword: "12345678",
	}
}

// newTestServer builds a Server backed by miniredis with an initialized
// store and a canned suggestion completer.
func newTestServer(t *testing.T, completer *fakeCompleter) (*Server, *fiber.App) {
	t.Helper()
	return newTestServerWithConfig(t, testConfig(), completer)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config, completer *fakeCompleter) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	st := store.New(rdb)
	st.Initialize(context.Background())

	var adapter *suggest.Adapter
	if completer != nil {
		adapter = suggest.NewAdapter(completer)
	}

	s := NewServerWithDeps(cfg, rdb, st, adapter)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// loginToken logs the given user in through the auth service and returns a
// bearer token for them.
func loginToken(t *testing.T, s *Server, username, password string) string {
	t.Helper()
	user, err := s.authService.Login(context.Background(), username, password)
	require.NoError(t, err)
	token, err := s.generateToken(user)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func gifIDs(body map[string]any) []string {
	raw, _ := body["gifs"].([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		m, _ := item.(map[string]any)
		id, _ := m["id"].(string)
		out = append(out, id)
	}
	return out
}
