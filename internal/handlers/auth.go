package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/internal/config"
	"github.com/jastrate/task-manager/internal/middleware"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/response"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	authService services.AuthService
	cfg         config.AuthConfig
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password" binding:"required"`
}

func (r LoginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func NewAuthHandler(authService services.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// setSession writes the access token to the jwt cookie and the refresh token
// to its own cookie. Both are http-only.
func (h *AuthHandler) setSession(c *gin.Context, pair *services.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, pair.AccessToken, int(h.cfg.AccessTokenTTL.Seconds()), "/", "", h.cfg.CookieSecure, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(h.cfg.RefreshTokenTTL.Seconds()), "/", "", h.cfg.CookieSecure, true)
}

func (h *AuthHandler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cfg.CookieSecure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", h.cfg.CookieSecure, true)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, pair, err := h.authService.LoginUser(c.Request.Context(), req.identifier(), req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSession(c, pair)
	response.OK(c, "Login successful", gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// Me returns the authenticated user's identity.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	response.OK(c, "", gin.H{
		"user": gin.H{
			"id":       user.ID,
			"name":     user.Name,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
			"isAdmin":  user.IsGlobalAdmin(),
		},
	})
}
