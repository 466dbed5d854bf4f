package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/pkg/logger"
	"github.com/jastrate/task-manager/pkg/response"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshTokenFrom prefers the request body and falls back to the cookie.
func refreshTokenFrom(c *gin.Context) string {
	var req RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("refresh body ignored, trying cookie")
		}
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(refreshCookie); err == nil {
		return cookie
	}
	return ""
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	pair, err := h.authService.RefreshToken(c.Request.Context(), refreshTokenFrom(c))
	if err != nil {
		h.clearSession(c)
		response.Error(c, err)
		return
	}

	h.setSession(c, pair)
	response.OK(c, "Token refreshed", gin.H{"tokens": pair})
}
