package application

import (
	"time"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
)

type RegisterInput struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput is the whitelist accepted by PUT /users/:id. Keys
// outside it are dropped by the JSON decoder.
type UpdateProfileInput struct {
	Email       *string           `json:"email" binding:"omitempty,email"`
	FirstName   *string           `json:"firstName" binding:"omitempty,max=100"`
	LastName    *string           `json:"lastName" binding:"omitempty,max=100"`
	Role        *string           `json:"role" binding:"omitempty,role"`
	IsActive    *bool             `json:"isActive"`
	SocialLinks map[string]string `json:"socialLinks" binding:"omitempty,max=20,dive,keys,provider,endkeys,omitempty,http_url"`
}

type ResetInitInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetConfirmInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

// RequestMeta is the caller context recorded in audit rows and emails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// RegisterProfile is returned by Register.
type RegisterProfile struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginProfile is what the client caches after login.
type LoginProfile struct {
	ID                 string            `json:"id"`
	FirstName          string            `json:"firstName"`
	LastName           string            `json:"lastName"`
	Email              string            `json:"email"`
	FullName           string            `json:"fullName"`
	Role               entity.Role       `json:"role"`
	CreatedAt          time.Time         `json:"createdAt"`
	OnboardingComplete bool              `json:"onboardingComplete"`
	Occupation         *string           `json:"occupation"`
	SocialLinks        map[string]string `json:"socialLinks"`
}

// PublicProfile is the full record minus the credential.
type PublicProfile struct {
	ID        string      `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	FullName  string      `json:"fullName"`
	Role      entity.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	entity.OnboardingAnswers
	OnboardingComplete bool              `json:"onboardingComplete"`
	SocialLinks        map[string]string `json:"socialLinks"`
	AvatarURL          string            `json:"avatarUrl,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func toRegisterProfile(u *entity.User) RegisterProfile {
	return RegisterProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		FullName:  u.FullName(),
		CreatedAt: u.CreatedAt,
	}
}

func toLoginProfile(u *entity.User) LoginProfile {
	return LoginProfile{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Email:              u.Email,
		FullName:           u.FullName(),
		Role:               u.Role,
		CreatedAt:          u.CreatedAt,
		OnboardingComplete: u.OnboardingComplete,
		Occupation:         u.Onboarding.Occupation,
		SocialLinks:        nonNil(u.SocialLinks),
	}
}

func ToPublicProfile(u *entity.User) PublicProfile {
	return PublicProfile{
		ID:                 u.ID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Email:              u.Email,
		FullName:           u.FullName(),
		Role:               u.Role,
		IsActive:           u.IsActive,
		OnboardingAnswers:  u.Onboarding,
		OnboardingComplete: u.OnboardingComplete,
		SocialLinks:        nonNil(u.SocialLinks),
		AvatarURL:          u.AvatarURL,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
