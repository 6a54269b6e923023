package entity

// OnboardingAnswers is the closed set of welcome-wizard answers.
// Absent answers are nil so a submission only overwrites what it carries.
type OnboardingAnswers struct {
	UserType          *string  `json:"userType,omitempty" binding:"omitempty,usertype"`
	UserTypeOther     *string  `json:"userTypeOther,omitempty" binding:"omitempty,max=120"`
	PrimaryGoal       *string  `json:"primaryGoal,omitempty" binding:"omitempty,primarygoal"`
	SkillLevel        *string  `json:"skillLevel,omitempty" binding:"omitempty,skilllevel"`
	TargetPlatforms   []string `json:"targetPlatforms,omitempty" binding:"omitempty,max=20,dive,min=1,max=64"`
	TemplateInterests []string `json:"templateInterests,omitempty" binding:"omitempty,max=20,dive,min=1,max=64"`
	PreferredTheme    *string  `json:"preferredTheme,omitempty" binding:"omitempty,theme"`
	DesignStyle       *string  `json:"designStyle,omitempty" binding:"omitempty,designstyle"`
	Occupation        *string  `json:"occupation,omitempty" binding:"omitempty,max=120"`
}

var (
	UserTypes       = []string{"developer", "designer", "startup-founder", "business-owner", "freelancer", "agency", "other"}
	PrimaryGoals    = []string{"buy", "sell", "both", "exploring"}
	SkillLevels     = []string{"beginner", "intermediate", "advanced", "expert"}
	PreferredThemes = []string{"light", "dark", "both", "no-preference"}
	DesignStyles    = []string{"minimalist", "creative", "corporate", "modern"}
)

func (a OnboardingAnswers) IsEmpty() bool {
	return a.UserType == nil && a.UserTypeOther == nil && a.PrimaryGoal == nil &&
		a.SkillLevel == nil && a.TargetPlatforms == nil && a.TemplateInterests == nil &&
		a.PreferredTheme == nil && a.DesignStyle == nil && a.Occupation == nil
}

// Merge overwrites every answer present in in.
func (a *OnboardingAnswers) Merge(in OnboardingAnswers) {
	if in.UserType != nil {
		a.UserType = in.UserType
	}
	if in.UserTypeOther != nil {
		a.UserTypeOther = in.UserTypeOther
	}
	if in.PrimaryGoal != nil {
		a.PrimaryGoal = in.PrimaryGoal
	}
	if in.SkillLevel != nil {
		a.SkillLevel = in.SkillLevel
	}
	if in.TargetPlatforms != nil {
		a.TargetPlatforms = in.TargetPlatforms
	}
	if in.TemplateInterests != nil {
		a.TemplateInterests = in.TemplateInterests
	}
	if in.PreferredTheme != nil {
		a.PreferredTheme = in.PreferredTheme
	}
	if in.DesignStyle != nil {
		a.DesignStyle = in.DesignStyle
	}
	if in.Occupation != nil {
		a.Occupation = in.Occupation
	}
}
