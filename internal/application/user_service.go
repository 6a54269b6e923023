package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/template-marketplace/config"
	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/template-marketplace/internal/domain/repository"
	"github.com/oksasatya/template-marketplace/pkg/helpers"
	mailtpl "github.com/oksasatya/template-marketplace/pkg/mailer/templates"
	"github.com/oksasatya/template-marketplace/pkg/validation"
)

var (
	registrations = expvar.NewInt("account_registrations")
	logins        = expvar.NewInt("account_logins")
	loginFailures = expvar.NewInt("account_login_failures")
)

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// EmailPublisher queues account emails for the worker.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type Service struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Redis        *redis.Client
	Logger       *logrus.Logger
	Cfg          *config.Config
	GCS          *storage.Client
	GCSBucket    string
	ES           *elasticsearch.Client
	ESUsersIndex string
	Emails       EmailPublisher
	Audit        repo.AuditRepository
	BcryptCost   int
	SessionTTL   time.Duration
	Now          func() time.Time
}

// NewService wires the required collaborators. Optional ones (GCS, ES,
// Emails, Audit) are assigned on the returned value.
func NewService(repo repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config) *Service {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	s := &Service{
		Repo:         repo,
		JWT:          jwt,
		Redis:        rdb,
		Logger:       logger,
		Cfg:          cfg,
		GCSBucket:    cfg.GCSBucket,
		ESUsersIndex: cfg.ESUsersIndex,
		BcryptCost:   cfg.BcryptCost,
		SessionTTL:   cfg.SessionTTL,
		Now:          time.Now,
	}
	if s.BcryptCost == 0 {
		s.BcryptCost = helpers.DefaultPasswordCost
	}
	if s.SessionTTL == 0 {
		s.SessionTTL = 7 * 24 * time.Hour
	}
	return s
}

// Register creates an account and opens a session for it. A failure to
// open the session is logged; the account still exists and the caller can
// log in.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (RegisterProfile, TokenPair, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = entity.NormalizeEmail(in.Email)

	missing := map[string]string{}
	for name, v := range map[string]string{"firstName": in.FirstName, "lastName": in.LastName, "email": in.Email, "password": in.Password} {
		if v == "" {
			missing[name] = "is required"
		}
	}
	if len(missing) > 0 {
		return RegisterProfile{}, TokenPair{}, invalid("Please provide all required fields: firstName, lastName, email, and password", missing)
	}
	if err := validation.Struct(&in); err != nil {
		return RegisterProfile{}, TokenPair{}, invalid("Please provide a valid email and a password of at least 6 characters", validation.ToDetails(err))
	}

	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return RegisterProfile{}, TokenPair{}, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrNotFound) {
		return RegisterProfile{}, TokenPair{}, storageErr("lookup email", err)
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return RegisterProfile{}, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}
	u := entity.NewUser(in.FirstName, in.LastName, in.Email, hash, s.Now())
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return RegisterProfile{}, TokenPair{}, ErrDuplicateEmail
		}
		return RegisterProfile{}, TokenPair{}, storageErr("create user", err)
	}
	registrations.Add(1)
	s.audit(ctx, entity.AuditRegister, u.ID, u.Email, meta)
	_ = s.indexUser(ctx, u)
	s.queueEmail(ctx, u.Email, mailtpl.Welcome, mailtpl.NewWelcomeData(s.Cfg, u.FullName(), u.Email,
		mailtpl.WithIP(meta.IP), mailtpl.WithUserAgent(meta.UserAgent), mailtpl.WithTime(s.Now())))

	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		helpers.LogError(s.Logger, "issue tokens after register failed", err, logrus.Fields{"user_id": u.ID})
		pair = TokenPair{}
	}
	return toRegisterProfile(u), pair, nil
}

// Login verifies the password before looking at the active flag, so the
// deactivated message is only ever shown to someone holding the password.
func (s *Service) Login(ctx context.Context, in LoginInput, meta RequestMeta) (LoginProfile, TokenPair, error) {
	email := entity.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return LoginProfile{}, TokenPair{}, invalid("Please provide email and password", nil)
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			helpers.BurnPasswordCheck(in.Password, s.BcryptCost)
			s.loginFailed(ctx, "", email, meta)
			return LoginProfile{}, TokenPair{}, ErrInvalidCredentials
		}
		return LoginProfile{}, TokenPair{}, storageErr("lookup email", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		s.loginFailed(ctx, u.ID, email, meta)
		return LoginProfile{}, TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		s.loginFailed(ctx, u.ID, email, meta)
		return LoginProfile{}, TokenPair{}, ErrAccountDisabled
	}

	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return LoginProfile{}, TokenPair{}, err
	}
	logins.Add(1)
	s.audit(ctx, entity.AuditLogin, u.ID, u.Email, meta)
	return toLoginProfile(u), pair, nil
}

func (s *Service) loginFailed(ctx context.Context, userID, email string, meta RequestMeta) {
	loginFailures.Add(1)
	s.audit(ctx, entity.AuditLoginFailed, userID, email, meta)
}

func (s *Service) GetByID(ctx context.Context, id string) (PublicProfile, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return PublicProfile{}, err
	}
	return ToPublicProfile(u), nil
}

func (s *Service) load(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("get user", err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]PublicProfile, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, storageErr("list users", err)
	}
	out := make([]PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, ToPublicProfile(u))
	}
	return out, nil
}

// UpdateProfile applies the whitelisted fields. Deactivating an account
// ends its server session.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (PublicProfile, error) {
	fields := map[string]string{}
	trim := func(name string, p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		if v == "" {
			fields[name] = "must not be empty"
		}
		return &v
	}
	in.FirstName = trim("firstName", in.FirstName)
	in.LastName = trim("lastName", in.LastName)
	in.Email = trim("email", in.Email)
	if in.Email != nil {
		e := entity.NormalizeEmail(*in.Email)
		in.Email = &e
	}
	if len(fields) > 0 {
		return PublicProfile{}, invalid("Invalid profile data", fields)
	}
	if err := validation.Struct(&in); err != nil {
		return PublicProfile{}, invalid("Invalid profile data", validation.ToDetails(err))
	}

	patch := entity.UserPatch{
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		IsActive:    in.IsActive,
		SocialLinks: in.SocialLinks,
	}
	if in.Role != nil {
		role := entity.Role(*in.Role)
		patch.Role = &role
	}
	if patch.IsEmpty() {
		return s.GetByID(ctx, id)
	}
	var prevRole entity.Role
	if patch.Role != nil {
		prev, err := s.load(ctx, id)
		if err != nil {
			return PublicProfile{}, err
		}
		prevRole = prev.Role
	}

	u, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return PublicProfile{}, ErrUserNotFound
		case errors.Is(err, repo.ErrDuplicateEmail):
			return PublicProfile{}, ErrDuplicateEmail
		}
		return PublicProfile{}, storageErr("update user", err)
	}
	// tokens carry the role claim, so a role change ends the session too
	if (patch.IsActive != nil && !*patch.IsActive) || (patch.Role != nil && *patch.Role != prevRole) {
		s.revokeSession(ctx, u.ID)
	}
	_ = s.indexUser(ctx, u)
	return ToPublicProfile(u), nil
}

// SubmitOnboarding merges the supplied answers and marks onboarding done.
// Resubmission is allowed and overwrites only the answers it carries.
func (s *Service) SubmitOnboarding(ctx context.Context, id string, answers entity.OnboardingAnswers) (PublicProfile, error) {
	if answers.IsEmpty() {
		return PublicProfile{}, invalid("Please provide onboarding data", nil)
	}
	if err := validation.Struct(&answers); err != nil {
		return PublicProfile{}, invalid("Invalid onboarding data", validation.ToDetails(err))
	}
	u, err := s.Repo.MergeOnboarding(ctx, id, answers)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return PublicProfile{}, ErrUserNotFound
		}
		return PublicProfile{}, storageErr("merge onboarding", err)
	}
	_ = s.indexUser(ctx, u)
	s.queueEmail(ctx, u.Email, mailtpl.OnboardingComplete,
		mailtpl.NewOnboardingCompleteData(s.Cfg, u.FullName(), u.Email, answerSummary(u.Onboarding), mailtpl.WithTime(s.Now())))
	return ToPublicProfile(u), nil
}

func (s *Service) Delete(ctx context.Context, id string, meta RequestMeta) error {
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return storageErr("delete user", err)
	}
	s.revokeSession(ctx, id)
	s.unindexUser(ctx, id)
	s.audit(ctx, entity.AuditDelete, id, u.Email, meta)
	return nil
}

// UploadAvatar stores the image in GCS and records its public URL.
func (s *Service) UploadAvatar(ctx context.Context, id string, r io.Reader, contentType string) (PublicProfile, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return PublicProfile{}, ErrFeatureDisabled
	}
	ext, ok := avatarTypes[contentType]
	if !ok {
		return PublicProfile{}, invalid("Avatar must be a PNG, JPEG, WEBP or GIF image", map[string]string{"avatar": "unsupported content type"})
	}
	if _, err := s.load(ctx, id); err != nil {
		return PublicProfile{}, err
	}
	objectPath := path.Join("avatars", id, uuid.NewString()+ext)
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return PublicProfile{}, fmt.Errorf("upload avatar: %w", err)
	}
	u, err := s.Repo.SetAvatar(ctx, id, url)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return PublicProfile{}, ErrUserNotFound
		}
		return PublicProfile{}, storageErr("set avatar", err)
	}
	_ = s.indexUser(ctx, u)
	return ToPublicProfile(u), nil
}

func answerSummary(a entity.OnboardingAnswers) map[string]string {
	out := map[string]string{}
	put := func(label string, v *string) {
		if v != nil && *v != "" {
			out[label] = *v
		}
	}
	put("User type", a.UserType)
	put("Primary goal", a.PrimaryGoal)
	put("Skill level", a.SkillLevel)
	put("Preferred theme", a.PreferredTheme)
	put("Design style", a.DesignStyle)
	put("Occupation", a.Occupation)
	if len(a.TargetPlatforms) > 0 {
		out["Target platforms"] = strings.Join(a.TargetPlatforms, ", ")
	}
	if len(a.TemplateInterests) > 0 {
		out["Template interests"] = strings.Join(a.TemplateInterests, ", ")
	}
	return out
}
