package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers like the account service for a single user "u1".
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"id": "u1", "email": "ada@example.com"}})
	})
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			write(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
			return
		}
		write(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"id": "u1", "firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com",
				"fullName": "Ada Lovelace", "onboardingComplete": false, "occupation": nil, "socialLinks": map[string]string{},
			},
			"meta": map[string]any{"access_token": "acc-1", "refresh_token": "ref-1"},
		})
	})
	mux.HandleFunc("PATCH /api/users/u1/onboarding", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-1" {
			write(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
			return
		}
		data := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&data)
		data["id"], data["email"], data["onboardingComplete"] = "u1", "ada@example.com", true
		data["updatedAt"] = "2024-05-01T10:00:00Z"
		write(w, http.StatusOK, map[string]any{"success": true, "data": data})
	})
	mux.HandleFunc("PUT /api/users/u1", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "Invalid profile data",
			"error": map[string]string{"socialLinks[github]": "must be a valid http(s) URL"},
		})
	})
	mux.HandleFunc("POST /api/users/logout", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newSession(t *testing.T, baseURL string) *Session {
	t.Helper()
	return NewSession(New(baseURL), NewSessionCache(filepath.Join(t.TempDir(), "session.json")))
}

func TestSession_LoginOnboardLogout(t *testing.T) {
	srv := fakeAPI(t)
	s := newSession(t, srv.URL)
	ctx := context.Background()

	_, err := s.Require("/dashboard")
	var lre *LoginRequiredError
	require.ErrorAs(t, err, &lre)
	assert.Equal(t, "/dashboard", lre.Next)

	p, err := s.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.FullName)
	assert.Nil(t, p.Occupation)
	assert.True(t, s.NeedsOnboarding())

	cached, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", cached.ID)
	access, refresh := s.Cache.Tokens()
	assert.Equal(t, "acc-1", access)
	assert.Equal(t, "ref-1", refresh)

	p, err = s.SubmitOnboarding(ctx, Answers{
		"occupation":      "Engineer",
		"skillLevel":      "expert",
		"targetPlatforms": []string{"react", "vue"},
	})
	require.NoError(t, err)
	assert.True(t, p.OnboardingComplete)
	assert.False(t, s.NeedsOnboarding())
	cached, ok = s.Cache.Load()
	require.True(t, ok)
	require.NotNil(t, cached.Occupation)
	assert.Equal(t, "Engineer", *cached.Occupation)
	require.NotNil(t, cached.SkillLevel)
	assert.Equal(t, "expert", *cached.SkillLevel)
	assert.Equal(t, []string{"react", "vue"}, cached.TargetPlatforms)
	assert.False(t, cached.UpdatedAt.IsZero())

	require.NoError(t, s.AddToCart("tpl-1"))
	assert.Equal(t, []string{"tpl-1"}, s.Cart())

	require.NoError(t, s.Logout(ctx))
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.Cart())
	access, _ = s.API.Tokens()
	assert.Empty(t, access)
}

func TestSession_RegisterSignsIn(t *testing.T) {
	srv := fakeAPI(t)
	s := newSession(t, srv.URL)

	p, err := s.Register(context.Background(), RegisterRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	_, ok := s.Current()
	assert.True(t, ok)
}

func TestSession_RestoresTokensFromCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, NewSessionCache(path).Save(Profile{ID: "u1"}, "acc-1", "ref-1"))

	s := NewSession(New("http://unused"), NewSessionCache(path))
	access, refresh := s.API.Tokens()
	assert.Equal(t, "acc-1", access)
	assert.Equal(t, "ref-1", refresh)
}

func TestClient_ServerMessageVerbatim(t *testing.T) {
	srv := fakeAPI(t)
	s := newSession(t, srv.URL)
	ctx := context.Background()

	_, err := s.Login(ctx, "ada@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid email or password", apiErr.Error())
	_, ok := s.Current()
	assert.False(t, ok)

	_, err = s.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.UpdateSocialLinks(ctx, map[string]string{"github": "nope"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "must be a valid http(s) URL", apiErr.Fields["socialLinks[github]"])
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(base).Get(context.Background(), "u1")
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestSessionCache_TolerantOfBadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	c := NewSessionCache(path)

	_, ok := c.Load()
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, ok = c.Load()
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(`{"user":{"email":"x@y.z"}}`), 0o600))
	_, ok = c.Load()
	assert.False(t, ok, "profile without id is not a session")

	require.NoError(t, c.Clear())
	require.NoError(t, c.Clear())
}
