package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,role"`
}

type links struct {
	SocialLinks map[string]string `json:"socialLinks" binding:"omitempty,dive,keys,provider,endkeys,omitempty,http_url"`
}

func strp(s string) *string { return &s }

func TestStruct_AliasesAndDetails(t *testing.T) {
	err := Struct(&signup{Email: "nope", Password: "123", Role: "root"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be between 6 and 72 characters long", details["password"])
	assert.Equal(t, "must be one of: user, admin, seller", details["role"])
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&signup{Email: "ada@example.com", Password: "s3cret!"}))
}

func TestStruct_OnboardingEnums(t *testing.T) {
	err := Struct(&entity.OnboardingAnswers{SkillLevel: strp("wizard"), DesignStyle: strp("modern")})
	require.Error(t, err)
	details := ToDetails(err)
	assert.Contains(t, details["skillLevel"], "expert")
	assert.NotContains(t, details, "designStyle")

	assert.NoError(t, Struct(&entity.OnboardingAnswers{SkillLevel: strp("expert"), TargetPlatforms: []string{"react"}}))
}

func TestStruct_SocialLinks(t *testing.T) {
	assert.NoError(t, Struct(&links{SocialLinks: map[string]string{"github": "https://github.com/ada", "twitter": ""}}))

	err := Struct(&links{SocialLinks: map[string]string{"Bad.Key": "https://x.com"}})
	require.Error(t, err)
	for k, v := range ToDetails(err) {
		assert.True(t, strings.HasPrefix(k, "socialLinks"))
		assert.Contains(t, v, "lowercase")
	}

	err = Struct(&links{SocialLinks: map[string]string{"github": "javascript:alert(1)"}})
	require.Error(t, err)
}

func TestToDetails_JSONErrors(t *testing.T) {
	var v map[string]any
	err := json.Unmarshal([]byte("{"), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	assert.Equal(t, map[string]string{"foo": "is not a recognised field"}, ToDetails(errors.New(`json: unknown field "foo"`)))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("boom")))
	assert.Nil(t, ToDetails(nil))
}
