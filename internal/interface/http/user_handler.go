package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/template-marketplace/internal/application"
	"github.com/oksasatya/template-marketplace/internal/domain/entity"
	"github.com/oksasatya/template-marketplace/internal/interface/middleware"
	"github.com/oksasatya/template-marketplace/pkg/helpers"
	"github.com/oksasatya/template-marketplace/pkg/response"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Svc         *userapp.Service
	Logger      *logrus.Logger
	Cookies     *helpers.Manager
	RequireAuth bool
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cookieDomain string, cookieSecure, requireAuth bool) *UserHandler {
	return &UserHandler{
		Svc:         svc,
		Logger:      logger,
		Cookies:     helpers.NewCookie(cookieDomain, cookieSecure),
		RequireAuth: requireAuth,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var in userapp.RegisterInput
	if err := decodeJSON(c, &in, false); err != nil {
		badPayload(c, err)
		return
	}
	profile, pair, err := h.Svc.Register(c.Request.Context(), in, requestMeta(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if pair.AccessToken != "" {
		h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	}
	response.Success(c, http.StatusCreated, profile, "User registered successfully", tokenMeta(pair))
}

func (h *UserHandler) Login(c *gin.Context) {
	var in userapp.LoginInput
	if err := decodeJSON(c, &in, false); err != nil {
		badPayload(c, err)
		return
	}
	profile, pair, err := h.Svc.Login(c.Request.Context(), in, requestMeta(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, profile, "Login successful", tokenMeta(pair))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh accepts the refresh token from its cookie or, for non-browser
// clients, from the JSON body.
func (h *UserHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookie)
	if token == "" {
		var req refreshRequest
		if err := decodeJSON(c, &req, false); err != nil {
			badPayload(c, err)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "Token refreshed", tokenMeta(pair))
}

// Logout always clears the cookies. The server session is ended when the
// caller can be identified from the access token, or from the refresh token
// in its cookie or the JSON body.
func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		tok, _ := c.Cookie(helpers.RefreshCookie)
		if tok == "" {
			var req refreshRequest
			if decodeJSON(c, &req, false) == nil {
				tok = req.RefreshToken
			}
		}
		if tok != "" {
			uid, _ = h.Svc.UserIDFromRefresh(tok)
		}
	}
	h.Svc.Logout(c.Request.Context(), uid, requestMeta(c))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "Logged out", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, users, "")
}

func (h *UserHandler) Get(c *gin.Context) {
	profile, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profile, "", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	var in userapp.UpdateProfileInput
	if err := decodeJSON(c, &in, false); err != nil {
		badPayload(c, err)
		return
	}
	if h.RequireAuth && !callerIsAdmin(c) && (in.Role != nil || in.IsActive != nil) {
		response.Error[any](c, http.StatusForbidden, "Only admins can change role or account status", nil)
		return
	}
	profile, err := h.Svc.UpdateProfile(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profile, "User updated successfully", nil)
}

func (h *UserHandler) SubmitOnboarding(c *gin.Context) {
	var answers entity.OnboardingAnswers
	if err := decodeJSON(c, &answers, true); err != nil {
		badPayload(c, err)
		return
	}
	profile, err := h.Svc.SubmitOnboarding(c.Request.Context(), c.Param("id"), answers)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profile, "", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), requestMeta(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "User deleted successfully", nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), strings.TrimSpace(c.Query("q")), size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, hits, "")
}

// UploadAvatar takes a multipart "avatar" file. The content type is sniffed
// from the bytes rather than trusted from the client.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes+1024)
	fh, err := c.FormFile("avatar")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.Error[any](c, http.StatusRequestEntityTooLarge, "Avatar must be 5MB or smaller", nil)
			return
		}
		response.Error[any](c, http.StatusBadRequest, "Please attach an image as 'avatar'", nil)
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "Avatar must be 5MB or smaller", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	profile, err := h.Svc.UploadAvatar(c.Request.Context(), c.Param("id"), bytes.NewReader(data), http.DetectContentType(data))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, profile, "Avatar updated", nil)
}
