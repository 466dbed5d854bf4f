package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/pkg/response"
)

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token              string `json:"token" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}

type ChangePasswordRequest struct {
	NewPassword        string `json:"newPassword" binding:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, response.NewBadRequest("Verification token is required"))
		return
	}
	if err := h.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Email verified successfully", nil)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "If the account exists, a verification email has been sent", nil)
}

func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ForgetPassword(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "If the account exists, a password reset link has been sent", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		response.Error(c, response.NewBadRequest(err.Error()))
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, req.ConfirmNewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Password reset successfully", nil)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		response.Error(c, response.NewBadRequest(err.Error()))
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), user.ID, req.NewPassword, req.ConfirmNewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password changed successfully.", nil)
}
