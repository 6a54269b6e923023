package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/template-marketplace/internal/application"
	"github.com/oksasatya/template-marketplace/internal/interface/middleware"
	"github.com/oksasatya/template-marketplace/pkg/response"
	"github.com/oksasatya/template-marketplace/pkg/validation"
)

// respondError maps service errors to HTTP statuses. Anything unrecognised
// is logged and reported as a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *userapp.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, ve.Error(), ve.Fields)
	case errors.Is(err, userapp.ErrDuplicateEmail):
		response.Error[any](c, http.StatusBadRequest, userapp.ErrDuplicateEmail.Error(), nil)
	case errors.Is(err, userapp.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, userapp.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, userapp.ErrAccountDisabled):
		response.Error[any](c, http.StatusUnauthorized, userapp.ErrAccountDisabled.Error(), nil)
	case errors.Is(err, userapp.ErrInvalidToken):
		response.Error[any](c, http.StatusUnauthorized, userapp.ErrInvalidToken.Error(), nil)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, userapp.ErrUserNotFound.Error(), nil)
	case errors.Is(err, userapp.ErrFeatureDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "This feature is not available", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, userapp.ErrStorageUnavailable.Error(), nil)
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst at
// its zero value so the service reports the missing fields. With strict
// set, keys outside dst are rejected.
func decodeJSON(c *gin.Context, dst any, strict bool) error {
	dec := json.NewDecoder(c.Request.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "Invalid request payload", validation.ToDetails(err))
}

func requestMeta(c *gin.Context) userapp.RequestMeta {
	ip := c.GetString("real_ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	return userapp.RequestMeta{IP: ip, UserAgent: c.GetHeader("User-Agent")}
}

func tokenMeta(pair userapp.TokenPair) map[string]any {
	if pair.AccessToken == "" {
		return nil
	}
	return map[string]any{
		"access_token":       pair.AccessToken,
		"refresh_token":      pair.RefreshToken,
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	}
}

func callerIsAdmin(c *gin.Context) bool {
	return c.GetString(middleware.CtxUserRole) == "admin"
}
