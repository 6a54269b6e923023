package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the account domain.
// Password holds the bcrypt hash; the plaintext never reaches this type.
type User struct {
	ID                 string
	Email              string
	Password           string
	FirstName          string
	LastName           string
	Role               Role
	IsActive           bool
	OnboardingComplete bool
	Onboarding         OnboardingAnswers
	SocialLinks        map[string]string
	AvatarURL          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewUser builds a fresh record with the registration defaults applied.
func NewUser(firstName, lastName, email, passwordHash string, now time.Time) *User {
	return &User{
		Email:       NormalizeEmail(email),
		Password:    passwordHash,
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		Role:        RoleUser,
		IsActive:    true,
		SocialLinks: map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// FullName is the display name: first and last name joined by a space.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserPatch is the whitelisted set of profile fields a generic update may touch.
// Nil fields are left unchanged. SocialLinks merges per key; an empty value removes the key.
type UserPatch struct {
	Email       *string
	FirstName   *string
	LastName    *string
	Role        *Role
	IsActive    *bool
	SocialLinks map[string]string
}

func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil &&
		p.Role == nil && p.IsActive == nil && len(p.SocialLinks) == 0
}

// Apply mutates u in place with the patch and bumps UpdatedAt.
func (u *User) Apply(p UserPatch, now time.Time) {
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if len(p.SocialLinks) > 0 && u.SocialLinks == nil {
		u.SocialLinks = map[string]string{}
	}
	for k, v := range p.SocialLinks {
		if v == "" {
			delete(u.SocialLinks, k)
			continue
		}
		u.SocialLinks[k] = v
	}
	u.UpdatedAt = now
}

// ApplyOnboarding merges the supplied answers and marks onboarding complete.
func (u *User) ApplyOnboarding(a OnboardingAnswers, now time.Time) {
	u.Onboarding.Merge(a)
	u.OnboardingComplete = true
	u.UpdatedAt = now
}
