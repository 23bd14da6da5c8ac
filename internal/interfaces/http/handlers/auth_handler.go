package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/interfaces/http/middleware"
	"wealthline.backend/internal/interfaces/http/response"
	"wealthline.backend/internal/usecases"
)

type authService interface {
	SignupCode(ctx context.Context, input *entities.SignupCodeInput) error
	Signup(ctx context.Context, input *entities.SignupInput, doc *entities.UploadedFile) (*entities.AuthResult, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResult, error)
	RequestOTP(ctx context.Context, input *entities.OTPRequestInput) error
	VerifyOTP(ctx context.Context, input *entities.OTPVerifyInput) (*entities.AuthResult, error)
	RequestPasswordReset(ctx context.Context, input *entities.PasswordResetInput)
	RecoverPassword(ctx context.Context, sessionID string, input *entities.PasswordRecoverInput) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, sessionID string, input *entities.PasswordUpdateInput) error
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID uuid.UUID) (*entities.User, *entities.Profile, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth         authService
	secureCookie bool
	maxUpload    int64
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *usecases.AuthUsecase, secureCookie bool, maxUpload int64) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookie: secureCookie, maxUpload: maxUpload}
}

// SignupCode emails a signup code
// POST /api/v1/auth/signup/code
func (h *AuthHandler) SignupCode(c *gin.Context) {
	var input entities.SignupCodeInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.auth.SignupCode(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Check your email for the code."})
}

// Signup completes registration with KYC details and an ID document
// POST /api/v1/auth/signup (multipart/form-data)
func (h *AuthHandler) Signup(c *gin.Context) {
	var input entities.SignupInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	doc, err := readUpload(c, "id_document", h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), &input, doc)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.signedIn(c, http.StatusCreated, result)
}

// Login signs in with email and password
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.signedIn(c, http.StatusOK, result)
}

// RequestOTP emails a login code to an existing account
// POST /api/v1/auth/otp
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var input entities.OTPRequestInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.auth.RequestOTP(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Check your email for the code."})
}

// VerifyOTP signs in with an emailed code
// POST /api/v1/auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var input entities.OTPVerifyInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.auth.VerifyOTP(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.signedIn(c, http.StatusOK, result)
}

// RequestPasswordReset always answers 200 so accounts cannot be enumerated
// POST /api/v1/auth/password/reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var input entities.PasswordResetInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	h.auth.RequestPasswordReset(c.Request.Context(), &input)
	response.Success(c, http.StatusOK, gin.H{"message": "If that email has an account, a reset link is on its way."})
}

// RecoverPassword sets a new password with a reset token
// POST /api/v1/auth/password/recover
func (h *AuthHandler) RecoverPassword(c *gin.Context) {
	var input entities.PasswordRecoverInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.auth.RecoverPassword(c.Request.Context(), middleware.GetSessionID(c), &input); err != nil {
		response.Error(c, err)
		return
	}
	middleware.ClearSessionCookies(c, h.secureCookie)
	response.Success(c, http.StatusOK, gin.H{"message": "Password updated. Please sign in again.", "redirect": usecases.LoginPath})
}

// UpdatePassword changes the password of the signed-in user
// POST /api/v1/auth/password/update
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthenticated("Sign in to continue."))
		return
	}
	var input entities.PasswordUpdateInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.auth.UpdatePassword(c.Request.Context(), userID, middleware.GetSessionID(c), &input); err != nil {
		response.Error(c, err)
		return
	}
	middleware.ClearSessionCookies(c, h.secureCookie)
	response.Success(c, http.StatusOK, gin.H{"message": "Password updated. Please sign in again.", "redirect": usecases.LoginPath})
}

// Logout deletes the session and clears cookies
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	middleware.ClearSessionCookies(c, h.secureCookie)
	response.Success(c, http.StatusOK, gin.H{"message": "Signed out.", "redirect": usecases.LoginPath})
}

// Me returns the current user and profile
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthenticated("Sign in to continue."))
		return
	}
	user, profile, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "profile": profile})
}

func (h *AuthHandler) signedIn(c *gin.Context, status int, result *entities.AuthResult) {
	middleware.SetSessionCookies(c, result.Session, h.secureCookie)
	response.Success(c, status, gin.H{"user": result.User, "redirect": result.Redirect})
}
