package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/template-marketplace/internal/domain/repository"
	"github.com/oksasatya/template-marketplace/pkg/helpers"
	mailtpl "github.com/oksasatya/template-marketplace/pkg/mailer/templates"
	"github.com/oksasatya/template-marketplace/pkg/validation"
)

const resetTokenTTL = 30 * time.Minute

type resetTicket struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ResetInit starts a password reset. It reports success for unknown or
// deactivated addresses too, so the endpoint cannot be used to probe for
// accounts.
func (s *Service) ResetInit(ctx context.Context, in ResetInitInput, meta RequestMeta) error {
	in.Email = entity.NormalizeEmail(in.Email)
	if err := validation.Struct(&in); err != nil {
		return invalid("Please provide a valid email", validation.ToDetails(err))
	}
	if s.Redis == nil {
		return ErrFeatureDisabled
	}
	u, err := s.Repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithField("email", in.Email).Debug("reset requested for unknown email")
			return nil
		}
		return storageErr("lookup email", err)
	}
	if !u.IsActive {
		return nil
	}

	tok, err := helpers.GenToken(32)
	if err != nil {
		return err
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, helpers.KeyResetToken(tok), resetTicket{UserID: u.ID, Email: u.Email}, resetTokenTTL); err != nil {
		return storageErr("store reset token", err)
	}
	s.queueEmail(ctx, u.Email, mailtpl.PasswordReset,
		mailtpl.NewPasswordResetData(s.Cfg, u.FullName(), u.Email, resetLink(s.Cfg.ResetPasswordURL, tok),
			mailtpl.WithIP(meta.IP), mailtpl.WithUserAgent(meta.UserAgent), mailtpl.WithTime(s.Now()), mailtpl.WithExpiresIn(resetTokenTTL)))
	s.audit(ctx, entity.AuditResetInit, u.ID, u.Email, meta)
	return nil
}

// ResetConfirm consumes a reset token, sets the new password and ends any
// open session.
func (s *Service) ResetConfirm(ctx context.Context, in ResetConfirmInput, meta RequestMeta) error {
	in.Token = strings.TrimSpace(in.Token)
	if err := validation.Struct(&in); err != nil {
		return invalid("Please provide a token and a password of at least 6 characters", validation.ToDetails(err))
	}
	if s.Redis == nil {
		return ErrFeatureDisabled
	}
	raw, err := s.Redis.GetDel(ctx, helpers.KeyResetToken(in.Token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidToken
	}
	if err != nil {
		return storageErr("load reset token", err)
	}
	var t resetTicket
	if err := json.Unmarshal(raw, &t); err != nil || t.UserID == "" {
		return ErrInvalidToken
	}

	hash, err := helpers.HashPassword(in.NewPassword, s.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, t.UserID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidToken
		}
		return storageErr("update password", err)
	}
	s.revokeSession(ctx, t.UserID)
	s.audit(ctx, entity.AuditResetComplete, t.UserID, t.Email, meta)
	s.Logger.WithFields(logrus.Fields{"user_id": t.UserID}).Info("password reset completed")
	return nil
}

func resetLink(base, token string) string {
	if base == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}
