package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/pkg/logger"
	"github.com/jastrate/task-manager/pkg/response"
)

// Logout always succeeds; a failed revocation is only logged.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), refreshTokenFrom(c)); err != nil {
		logger.Warn().Err(err).Msg("refresh token revocation failed")
	}

	h.clearSession(c)
	response.OK(c, "Logged out successfully", nil)
}
