package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Profile is the account projection returned by the service. Fields a
// given endpoint does not send stay at their zero value.
type Profile struct {
	ID                 string            `json:"id"`
	FirstName          string            `json:"firstName"`
	LastName           string            `json:"lastName"`
	Email              string            `json:"email"`
	FullName           string            `json:"fullName"`
	Role               string            `json:"role,omitempty"`
	IsActive           *bool             `json:"isActive,omitempty"`
	OnboardingComplete bool              `json:"onboardingComplete"`
	UserType           *string           `json:"userType,omitempty"`
	UserTypeOther      *string           `json:"userTypeOther,omitempty"`
	PrimaryGoal        *string           `json:"primaryGoal,omitempty"`
	SkillLevel         *string           `json:"skillLevel,omitempty"`
	TargetPlatforms    []string          `json:"targetPlatforms,omitempty"`
	TemplateInterests  []string          `json:"templateInterests,omitempty"`
	PreferredTheme     *string           `json:"preferredTheme,omitempty"`
	DesignStyle        *string           `json:"designStyle,omitempty"`
	Occupation         *string           `json:"occupation"`
	SocialLinks        map[string]string `json:"socialLinks,omitempty"`
	AvatarURL          string            `json:"avatarUrl,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Answers is an onboarding submission keyed by the service's field names.
type Answers map[string]any

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   json.RawMessage `json:"error"`
}

type tokenMeta struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client talks to the account API. It is safe for concurrent use.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu      sync.RWMutex
	access  string
	refresh string
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTokens restores a token pair, e.g. from a previous run.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.access, c.refresh = access, refresh
	c.mu.Unlock()
}

func (c *Client) Tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access, c.refresh
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodPost, "/api/users", in, &p)
	return p, err
}

func (c *Client) Login(ctx context.Context, email, password string) (Profile, error) {
	var p Profile
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/users/login", body, &p)
	return p, err
}

func (c *Client) Get(ctx context.Context, id string) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &p)
	return p, err
}

// UpdateProfile sends a partial update. Social links merge per key on the
// server; an empty value removes a link.
func (c *Client) UpdateProfile(ctx context.Context, id string, patch map[string]any) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), patch, &p)
	return p, err
}

func (c *Client) SubmitOnboarding(ctx context.Context, id string, answers Answers) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id)+"/onboarding", answers, &p)
	return p, err
}

// Logout ends the server session and forgets the tokens.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.Tokens()
	var body any
	if refresh != "" {
		body = map[string]string{"refreshToken": refresh}
	}
	err := c.do(ctx, http.MethodPost, "/api/users/logout", body, nil)
	c.SetTokens("", "")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, _ := c.Tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w (%v)", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		_ = json.Unmarshal(env.Error, &apiErr.Fields)
		return apiErr
	}

	if len(env.Meta) > 0 {
		var tm tokenMeta
		if json.Unmarshal(env.Meta, &tm) == nil && tm.AccessToken != "" {
			c.SetTokens(tm.AccessToken, tm.RefreshToken)
		}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
