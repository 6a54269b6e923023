package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
)

// userDocument mirrors the user_registration collection layout; onboarding
// answers live at the top level of the document.
type userDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	FirstName          string             `bson:"firstName"`
	LastName           string             `bson:"lastName"`
	Email              string             `bson:"email"`
	Password           string             `bson:"password,omitempty"`
	OnboardingComplete bool               `bson:"onboardingComplete"`
	UserType           *string            `bson:"userType,omitempty"`
	UserTypeOther      *string            `bson:"userTypeOther,omitempty"`
	PrimaryGoal        *string            `bson:"primaryGoal,omitempty"`
	SkillLevel         *string            `bson:"skillLevel,omitempty"`
	TargetPlatforms    []string           `bson:"targetPlatforms,omitempty"`
	TemplateInterests  []string           `bson:"templateInterests,omitempty"`
	PreferredTheme     *string            `bson:"preferredTheme,omitempty"`
	DesignStyle        *string            `bson:"designStyle,omitempty"`
	Occupation         *string            `bson:"occupation,omitempty"`
	Role               string             `bson:"role"`
	IsActive           bool               `bson:"isActive"`
	SocialLinks        map[string]string  `bson:"socialLinks,omitempty"`
	AvatarURL          string             `bson:"avatarUrl,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func fromEntity(u *entity.User) userDocument {
	a := u.Onboarding
	return userDocument{
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Email:              u.Email,
		Password:           u.Password,
		OnboardingComplete: u.OnboardingComplete,
		UserType:           a.UserType,
		UserTypeOther:      a.UserTypeOther,
		PrimaryGoal:        a.PrimaryGoal,
		SkillLevel:         a.SkillLevel,
		TargetPlatforms:    a.TargetPlatforms,
		TemplateInterests:  a.TemplateInterests,
		PreferredTheme:     a.PreferredTheme,
		DesignStyle:        a.DesignStyle,
		Occupation:         a.Occupation,
		Role:               string(u.Role),
		IsActive:           u.IsActive,
		SocialLinks:        u.SocialLinks,
		AvatarURL:          u.AvatarURL,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (d userDocument) toEntity() *entity.User {
	role := entity.Role(d.Role)
	if role == "" {
		role = entity.RoleUser
	}
	links := d.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	return &entity.User{
		ID:                 d.ID.Hex(),
		Email:              d.Email,
		Password:           d.Password,
		FirstName:          d.FirstName,
		LastName:           d.LastName,
		Role:               role,
		IsActive:           d.IsActive,
		OnboardingComplete: d.OnboardingComplete,
		Onboarding: entity.OnboardingAnswers{
			UserType:          d.UserType,
			UserTypeOther:     d.UserTypeOther,
			PrimaryGoal:       d.PrimaryGoal,
			SkillLevel:        d.SkillLevel,
			TargetPlatforms:   d.TargetPlatforms,
			TemplateInterests: d.TemplateInterests,
			PreferredTheme:    d.PreferredTheme,
			DesignStyle:       d.DesignStyle,
			Occupation:        d.Occupation,
		},
		SocialLinks: links,
		AvatarURL:   d.AvatarURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// onboardingSet returns the $set fields for the answers that are present.
func onboardingSet(a entity.OnboardingAnswers) map[string]any {
	set := map[string]any{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("userType", a.UserType)
	put("userTypeOther", a.UserTypeOther)
	put("primaryGoal", a.PrimaryGoal)
	put("skillLevel", a.SkillLevel)
	put("preferredTheme", a.PreferredTheme)
	put("designStyle", a.DesignStyle)
	put("occupation", a.Occupation)
	if a.TargetPlatforms != nil {
		set["targetPlatforms"] = a.TargetPlatforms
	}
	if a.TemplateInterests != nil {
		set["templateInterests"] = a.TemplateInterests
	}
	return set
}
