package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/config"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/pkg/logger"
	"github.com/jastrate/task-manager/pkg/response"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegistrationRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	Username        string `json:"username" binding:"required,min=3,max=50"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Title           string `json:"title" binding:"max=100"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, req RegistrationRequest) (*models.User, *TokenPair, error)
	LoginUser(ctx context.Context, identifier, password string) (*models.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgetPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirmPassword string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, password, confirmPassword string) error
}

type AuthServiceImpl struct {
	db     *gorm.DB
	issuer *TokenIssuer
	cfg    config.AuthConfig
	mail   MailDispatcher
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, cfg config.AuthConfig, mail MailDispatcher) *AuthServiceImpl {
	return &AuthServiceImpl{
		db:     db,
		issuer: NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL),
		cfg:    cfg,
		mail:   mail,
		now:    time.Now,
	}
}

func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

// RegisterUser creates the account and signs it in. The first account ever
// created becomes a global admin.
func (s *AuthServiceImpl) RegisterUser(ctx context.Context, req RegistrationRequest) (*models.User, *TokenPair, error) {
	if req.Password != req.ConfirmPassword {
		return nil, nil, response.NewBadRequest("Passwords do not match")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	hashed, err := HashPassword(req.Password, s.cfg.BCryptCost)
	if err != nil {
		return nil, nil, response.NewServerError("failed to hash password", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Username: username,
		Email:    email,
		Password: hashed,
		Title:    strings.TrimSpace(req.Title),
		Role:     models.RoleUser,
		IsActive: true,
	}

	var pair *TokenPair
	var verifyToken string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return response.NewConflict("Email already exists")
		}
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return response.NewConflict("Username already exists")
		}

		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			user.Role = models.RoleAdmin
			user.IsAdmin = true
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		verifyToken, err = s.createOneTimeToken(tx, user.ID, models.TokenPurposeVerifyEmail, s.cfg.VerifyTokenTTL)
		if err != nil {
			return err
		}

		pair, err = s.issuePair(tx, user)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.sendMail(ctx, MailMessage{
		To:      user.Email,
		Subject: "Verify your email",
		Body: fmt.Sprintf("Hi %s,\n\nConfirm your email address by opening:\n%s/verify-email?token=%s\n",
			user.Name, s.cfg.FrontendURL, verifyToken),
	})

	logger.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user registered")
	return user, pair, nil
}

// LoginUser accepts either an email address or a username as identifier.
func (s *AuthServiceImpl) LoginUser(ctx context.Context, identifier, password string) (*models.User, *TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil, response.NewBadRequest("Email/username and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, response.NewUnauthorized("Invalid email/username or password")
	}
	if err != nil {
		return nil, nil, err
	}

	if !VerifyPassword(user.Password, password) {
		logger.Warn().Str("user_id", user.ID.String()).Msg("login failed: bad password")
		return nil, nil, response.NewUnauthorized("Invalid email/username or password")
	}

	if !user.IsActive {
		return nil, nil, response.NewUnauthorized("User account has been deactivated, contact the administrator")
	}

	if s.cfg.RequireVerifiedLog && !user.IsVerified {
		return nil, nil, response.NewForbidden("Please verify your email before logging in")
	}

	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		if err := tx.Model(&user).Update("last_login", now).Error; err != nil {
			return err
		}
		user.LastLogin = &now

		pair, err = s.issuePair(tx, &user)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return &user, pair, nil
}

// RefreshToken rotates a refresh token: the presented one is consumed and a
// new pair is issued.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, response.NewUnauthorized("Refresh token is required")
	}

	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.consumeToken(tx, refreshToken, models.TokenPurposeRefresh)
		if err != nil {
			return response.NewUnauthorized("Invalid or expired refresh token")
		}

		var user models.User
		if err := tx.Where("id = ?", token.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewUnauthorized("Invalid or expired refresh token")
			}
			return err
		}
		if !user.IsActive {
			return response.NewUnauthorized("User account has been deactivated, contact the administrator")
		}

		pair, err = s.issuePair(tx, &user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the refresh token if present. Unknown tokens are ignored.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("token_hash = ? AND purpose = ?", hashToken(refreshToken), models.TokenPurposeRefresh).
		Delete(&models.Token{}).Error
}

// Authenticate resolves an access token to an active user.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, response.NewUnauthorized("Not authorized. Try login again.")
	}

	userID, _, err := s.issuer.Parse(accessToken)
	if errors.Is(err, ErrTokenExpired) {
		return nil, response.NewUnauthorized("Token expired. Try login again.")
	}
	if err != nil {
		return nil, response.NewUnauthorized("Invalid token. Try login again.")
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewForbidden("User not found")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, response.NewForbidden("User account is deactivated")
	}
	return &user, nil
}

func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.consumeToken(tx, token, models.TokenPurposeVerifyEmail)
		if err != nil {
			return response.NewBadRequest("Invalid or expired verification token")
		}
		return tx.Model(&models.User{}).Where("id = ?", t.UserID).Update("is_verified", true).Error
	})
}

func (s *AuthServiceImpl) ResendVerification(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsVerified {
		return response.NewBadRequest("Email is already verified")
	}

	var plain string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND purpose = ?", user.ID, models.TokenPurposeVerifyEmail).
			Delete(&models.Token{}).Error; err != nil {
			return err
		}
		plain, err = s.createOneTimeToken(tx, user.ID, models.TokenPurposeVerifyEmail, s.cfg.VerifyTokenTTL)
		return err
	})
	if err != nil {
		return err
	}

	s.sendMail(ctx, MailMessage{
		To:      user.Email,
		Subject: "Verify your email",
		Body:    fmt.Sprintf("Open %s/verify-email?token=%s to verify your email.\n", s.cfg.FrontendURL, plain),
	})
	return nil
}

// ForgetPassword mails a reset link. It reports success for unknown
// addresses so the endpoint cannot be used to probe accounts.
func (s *AuthServiceImpl) ForgetPassword(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Info().Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	plain, err := s.createOneTimeToken(s.db.WithContext(ctx), user.ID, models.TokenPurposeResetPassword, s.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}

	s.sendMail(ctx, MailMessage{
		To:      user.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hi %s,\n\nReset your password within %s by opening:\n%s/reset-password?token=%s\n",
			user.Name, s.cfg.ResetTokenTTL, s.cfg.FrontendURL, plain),
	})
	return nil
}

// ResetPassword sets a new password and revokes every refresh token the user
// holds.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	if password != confirmPassword {
		return response.NewBadRequest("Passwords do not match")
	}
	hashed, err := HashPassword(password, s.cfg.BCryptCost)
	if err != nil {
		return response.NewServerError("failed to hash password", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.consumeToken(tx, token, models.TokenPurposeResetPassword)
		if err != nil {
			return response.NewBadRequest("Invalid or expired reset token")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", t.UserID).Update("password", hashed).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND purpose = ?", t.UserID, models.TokenPurposeRefresh).
			Delete(&models.Token{}).Error
	})
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, password, confirmPassword string) error {
	if password != confirmPassword {
		return response.NewBadRequest("Passwords do not match")
	}
	hashed, err := HashPassword(password, s.cfg.BCryptCost)
	if err != nil {
		return response.NewServerError("failed to hash password", err)
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", hashed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("User not found")
	}
	return nil
}

func (s *AuthServiceImpl) issuePair(tx *gorm.DB, user *models.User) (*TokenPair, error) {
	access, _, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.createOneTimeToken(tx, user.ID, models.TokenPurposeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.issuer.TTL().Seconds()),
	}, nil
}

func (s *AuthServiceImpl) createOneTimeToken(tx *gorm.DB, userID uuid.UUID, purpose models.TokenPurpose, ttl time.Duration) (string, error) {
	plain, digest, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	token := models.Token{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: digest,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := tx.Create(&token).Error; err != nil {
		return "", fmt.Errorf("store %s token: %w", purpose, err)
	}
	return plain, nil
}

// consumeToken looks up a usable token and marks it used.
func (s *AuthServiceImpl) consumeToken(tx *gorm.DB, plain string, purpose models.TokenPurpose) (*models.Token, error) {
	if plain == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var token models.Token
	if err := tx.Where("token_hash = ? AND purpose = ?", hashToken(plain), purpose).First(&token).Error; err != nil {
		return nil, err
	}

	now := s.now()
	if !token.Usable(now) {
		return nil, gorm.ErrRecordNotFound
	}

	result := tx.Model(&models.Token{}).
		Where("id = ? AND used_at IS NULL", token.ID).
		Update("used_at", now)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &token, nil
}

func (s *AuthServiceImpl) sendMail(ctx context.Context, msg MailMessage) {
	if s.mail == nil {
		return
	}
	if err := s.mail.Dispatch(ctx, msg); err != nil {
		logger.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("failed to dispatch mail")
	}
}
