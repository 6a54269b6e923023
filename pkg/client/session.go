package client

import (
	"context"
	"sync"
)

// Session ties the API client to the local cache and gates protected
// actions on a cached profile.
type Session struct {
	API   *Client
	Cache *SessionCache

	mu   sync.Mutex
	cart []string
}

// NewSession restores any cached tokens onto api.
func NewSession(api *Client, cache *SessionCache) *Session {
	if access, refresh := cache.Tokens(); access != "" {
		api.SetTokens(access, refresh)
	}
	return &Session{API: api, Cache: cache}
}

func (s *Session) Current() (Profile, bool) {
	return s.Cache.Load()
}

// Require returns the cached profile, or *LoginRequiredError carrying dest
// so the caller can resume there after login.
func (s *Session) Require(dest string) (Profile, error) {
	p, ok := s.Cache.Load()
	if !ok {
		return Profile{}, &LoginRequiredError{Next: dest}
	}
	return p, nil
}

// NeedsOnboarding is true for a signed-in user who has not finished onboarding.
func (s *Session) NeedsOnboarding() bool {
	p, ok := s.Cache.Load()
	return ok && !p.OnboardingComplete
}

func (s *Session) Login(ctx context.Context, email, password string) (Profile, error) {
	p, err := s.API.Login(ctx, email, password)
	if err != nil {
		return Profile{}, err
	}
	return p, s.save(p)
}

// Register creates the account and signs in with the same credentials.
func (s *Session) Register(ctx context.Context, in RegisterRequest) (Profile, error) {
	if _, err := s.API.Register(ctx, in); err != nil {
		return Profile{}, err
	}
	return s.Login(ctx, in.Email, in.Password)
}

// SubmitOnboarding sends answers for the signed-in user and replaces the
// cached profile with the server's response.
func (s *Session) SubmitOnboarding(ctx context.Context, answers Answers) (Profile, error) {
	cur, err := s.Require("/dashboard")
	if err != nil {
		return Profile{}, err
	}
	p, err := s.API.SubmitOnboarding(ctx, cur.ID, answers)
	if err != nil {
		return Profile{}, err
	}
	return p, s.save(p)
}

// UpdateSocialLinks merges links into the signed-in user's profile.
func (s *Session) UpdateSocialLinks(ctx context.Context, links map[string]string) (Profile, error) {
	cur, err := s.Require("/dashboard/profile")
	if err != nil {
		return Profile{}, err
	}
	p, err := s.API.UpdateProfile(ctx, cur.ID, map[string]any{"socialLinks": links})
	if err != nil {
		return Profile{}, err
	}
	return p, s.save(p)
}

// AddToCart requires a signed-in user.
func (s *Session) AddToCart(templateID string) error {
	if _, err := s.Require("/cart"); err != nil {
		return err
	}
	s.mu.Lock()
	s.cart = append(s.cart, templateID)
	s.mu.Unlock()
	return nil
}

func (s *Session) Cart() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cart...)
}

// Logout clears local state even when the server cannot be reached.
func (s *Session) Logout(ctx context.Context) error {
	err := s.API.Logout(ctx)
	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()
	if cerr := s.Cache.Clear(); cerr != nil {
		return cerr
	}
	return err
}

func (s *Session) save(p Profile) error {
	access, refresh := s.API.Tokens()
	return s.Cache.Save(p, access, refresh)
}
