package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/logger"
	"github.com/jastrate/task-manager/pkg/response"
)

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := validateRegistration(&req); err != nil {
		response.Error(c, response.NewBadRequest(err.Error()))
		return
	}

	user, pair, err := h.authService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		logger.Warn().Err(err).Str("username", req.Username).Msg("registration failed")
		response.Error(c, err)
		return
	}

	h.setSession(c, pair)
	response.Created(c, "Welcome to Taskify! Check your inbox to verify your email.", gin.H{
		"user":   user,
		"tokens": pair,
	})
}

func validateRegistration(req *services.RegistrationRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}

	for _, char := range req.Username {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '_') {
			return errors.New("username can only contain letters, numbers, and underscores")
		}
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.ConfirmPassword == "" {
		return errors.New("confirmPassword is required")
	}

	return validatePassword(req.Password)
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool

	for _, char := range password {
		switch {
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= '0' && char <= '9':
			hasDigit = true
		case strings.ContainsRune("!@#$%^&*()_+-=[]{}|;:,.<>?", char):
			hasSpecial = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "number")
	}
	if !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return errors.New("password must contain at least one " + strings.Join(missing, ", "))
	}

	return nil
}
