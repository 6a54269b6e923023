package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestNewUser_Defaults(t *testing.T) {
	now := time.Now()
	u := NewUser(" Ada ", "Lovelace", "  ADA@Example.com ", "hash", now)

	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.False(t, u.OnboardingComplete)
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, now, u.CreatedAt)
}

func TestApply_SocialLinksMergePerKey(t *testing.T) {
	u := &User{SocialLinks: map[string]string{"github": "https://github.com/ada", "twitter": "https://x.com/ada"}}
	u.Apply(UserPatch{SocialLinks: map[string]string{"twitter": "https://x.com/lovelace", "github": "", "dribbble": "https://dribbble.com/ada"}}, time.Now())

	assert.Equal(t, map[string]string{
		"twitter":  "https://x.com/lovelace",
		"dribbble": "https://dribbble.com/ada",
	}, u.SocialLinks)
}

func TestApply_NilSocialLinksInitialised(t *testing.T) {
	u := &User{}
	role := RoleSeller
	active := false
	u.Apply(UserPatch{Role: &role, IsActive: &active, Email: strp(" New@Mail.io"), SocialLinks: map[string]string{"github": "https://github.com/x"}}, time.Now())

	assert.Equal(t, RoleSeller, u.Role)
	assert.False(t, u.IsActive)
	assert.Equal(t, "new@mail.io", u.Email)
	assert.Equal(t, "https://github.com/x", u.SocialLinks["github"])
}

func TestApplyOnboarding_MergesAndCompletes(t *testing.T) {
	u := &User{Onboarding: OnboardingAnswers{SkillLevel: strp("beginner"), DesignStyle: strp("modern")}}
	u.ApplyOnboarding(OnboardingAnswers{SkillLevel: strp("expert"), TargetPlatforms: []string{"react"}}, time.Now())

	assert.True(t, u.OnboardingComplete)
	assert.Equal(t, "expert", *u.Onboarding.SkillLevel)
	assert.Equal(t, "modern", *u.Onboarding.DesignStyle)
	assert.Equal(t, []string{"react"}, u.Onboarding.TargetPlatforms)
}

func TestOnboardingAnswers_IsEmpty(t *testing.T) {
	assert.True(t, OnboardingAnswers{}.IsEmpty())
	assert.False(t, OnboardingAnswers{Occupation: strp("")}.IsEmpty())
	assert.False(t, OnboardingAnswers{TemplateInterests: []string{}}.IsEmpty())
}

func TestUserPatch_IsEmpty(t *testing.T) {
	assert.True(t, UserPatch{}.IsEmpty())
	assert.False(t, UserPatch{FirstName: strp("x")}.IsEmpty())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
}
