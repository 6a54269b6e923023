package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/template-marketplace/internal/application"
	"github.com/oksasatya/template-marketplace/pkg/response"
)

// AuthHandler serves the password reset flow.
type AuthHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *userapp.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// ResetInit answers the same way whether or not the address is registered.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var in userapp.ResetInitInput
	if err := decodeJSON(c, &in, false); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Svc.ResetInit(c.Request.Context(), in, requestMeta(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "If that email is registered, a reset link has been sent", nil)
}

func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var in userapp.ResetConfirmInput
	if err := decodeJSON(c, &in, false); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Svc.ResetConfirm(c.Request.Context(), in, requestMeta(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password updated. Please log in again.", nil)
}
