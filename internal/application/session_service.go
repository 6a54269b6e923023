package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/template-marketplace/internal/domain/repository"
	"github.com/oksasatya/template-marketplace/pkg/helpers"
)

// IssueTokens signs an access/refresh pair under a fresh session id and
// records that id in Redis. Tokens carrying any other sid are rejected.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.signPair(u.ID, sid, string(u.Role))
	if err != nil {
		helpers.LogError(s.Logger, "generate tokens failed", err, logrus.Fields{"user_id": u.ID})
		return TokenPair{}, err
	}
	now := s.Now().UTC()
	s.storeSession(ctx, helpers.SessionRecord{
		SID:       sid,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: now,
		UpdatedAt: now,
	})
	return pair, nil
}

func (s *Service) signPair(userID, sid, role string) (TokenPair, error) {
	if s.JWT == nil {
		return TokenPair{}, ErrFeatureDisabled
	}
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid, role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid, role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *Service) storeSession(ctx context.Context, rec helpers.SessionRecord) {
	if s.Redis == nil {
		return
	}
	key := helpers.KeySession(rec.UserID)
	if err := helpers.RedisSetJSON(ctx, s.Redis, key, rec, s.SessionTTL); err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("redis session write failed")
	}
}

// Refresh rotates the session id and returns a new pair. The presented
// refresh token must carry the currently stored sid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	if s.JWT == nil {
		return TokenPair{}, "", ErrFeatureDisabled
	}
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidToken
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, "", ErrInvalidToken
		}
		return TokenPair{}, "", storageErr("get user", err)
	}
	if !u.IsActive {
		return TokenPair{}, "", ErrAccountDisabled
	}

	created := s.Now().UTC()
	if s.Redis != nil {
		var rec helpers.SessionRecord
		ok, rErr := helpers.RedisGetJSON(ctx, s.Redis, helpers.KeySession(u.ID), &rec)
		if rErr != nil || !ok || rec.SID != claims.SessionID {
			return TokenPair{}, "", ErrInvalidToken
		}
		created = rec.CreatedAt
	}

	sid := uuid.NewString()
	pair, err := s.signPair(u.ID, sid, string(u.Role))
	if err != nil {
		return TokenPair{}, "", err
	}
	s.storeSession(ctx, helpers.SessionRecord{
		SID:       sid,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: created,
		UpdatedAt: s.Now().UTC(),
	})
	return pair, u.ID, nil
}

// Logout ends the server session so outstanding tokens stop working.
func (s *Service) Logout(ctx context.Context, userID string, meta RequestMeta) {
	if userID == "" {
		return
	}
	s.revokeSession(ctx, userID)
	s.audit(ctx, entity.AuditLogout, userID, "", meta)
}

func (s *Service) revokeSession(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, helpers.KeySession(userID)); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("redis session delete failed")
	}
}

// UserIDFromRefresh extracts the subject of a refresh token without
// consulting the session store. Used by logout when no access token is sent.
func (s *Service) UserIDFromRefresh(token string) (string, error) {
	if s.JWT == nil || token == "" {
		return "", ErrInvalidToken
	}
	claims, err := s.JWT.ParseRefreshToken(token)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	return claims.UserID, nil
}
