package usecases

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/domain/repositories"
	"wealthline.backend/internal/infrastructure/mailer"
	"wealthline.backend/pkg/crypto"
	"wealthline.backend/pkg/jwt"
	"wealthline.backend/pkg/logger"
	redispkg "wealthline.backend/pkg/redis"
	"wealthline.backend/pkg/utils"
)

const (
	KYCBucket         = "kyc"
	otpCodeLength     = 6
	resetTokenBytes   = 32
	minPasswordLength = 8

	msgPasswordsMismatch = "Passwords do not match."
	msgPasswordTooShort  = "Password must be at least 8 characters."
	msgInvalidLogin      = "Invalid login credentials"
	msgOTPSignupDenied   = "Signups not allowed for otp"
)

// AuthConfig holds the tunables of the sign-in flows.
type AuthConfig struct {
	BaseURL        string
	OTPTTL         time.Duration
	ResetTTL       time.Duration
	MaxUploadBytes int64
}

// AuthDependencies groups the stores used by AuthUsecase.
type AuthDependencies struct {
	Users    repositories.UserRepository
	Profiles repositories.ProfileRepository
	Balances repositories.BalanceRepository
	UoW      repositories.UnitOfWork
	JWT      *jwt.JWTService
	Sessions SessionStore
	OTPs     OTPStore
	Resets   TokenStore
	Blobs    BlobStore
	Mail     Mailer
}

// AuthUsecase handles sign-up, sign-in and session resolution
type AuthUsecase struct {
	AuthDependencies
	cfg AuthConfig
	now func() time.Time
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(deps AuthDependencies, cfg AuthConfig) *AuthUsecase {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}
	return &AuthUsecase{AuthDependencies: deps, cfg: cfg, now: time.Now}
}

// ResolveSession turns cookie values into an identity. A valid access token
// wins; otherwise the session's refresh token is used to mint a new access
// token, returned as the refreshed session. Failures yield a nil identity.
func (u *AuthUsecase) ResolveSession(ctx context.Context, accessToken, sessionID string) (*entities.Identity, *entities.Session) {
	if accessToken != "" {
		if claims, err := u.JWT.ValidateTokenOfType(accessToken, jwt.TokenTypeAccess); err == nil {
			return &entities.Identity{UserID: claims.UserID, Email: claims.Email}, nil
		}
	}
	if sessionID == "" {
		return nil, nil
	}

	data, err := u.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if !redispkg.IsNil(err) {
			logger.Warn(ctx, "Session lookup failed", zap.Error(err))
		}
		return nil, nil
	}

	claims, err := u.JWT.ValidateTokenOfType(data.RefreshToken, jwt.TokenTypeRefresh)
	if err != nil || claims.SessionID != sessionID {
		return nil, nil
	}

	access, err := u.JWT.GenerateAccessToken(claims.UserID, claims.Email, sessionID)
	if err != nil {
		logger.Error(ctx, "Failed to refresh access token", zap.Error(err))
		return nil, nil
	}

	identity := &entities.Identity{UserID: claims.UserID, Email: claims.Email}
	return identity, &entities.Session{
		SessionID:   sessionID,
		AccessToken: access,
		AccessTTL:   u.JWT.AccessExpiry(),
	}
}

// SignupCode emails a signup code, creating the identity on first use.
func (u *AuthUsecase) SignupCode(ctx context.Context, input *entities.SignupCodeInput) error {
	email := normalizeEmail(input.Email)
	if _, err := u.Users.GetByEmail(ctx, email); err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		now := u.now().UTC()
		user := &entities.User{ID: utils.GenerateUUIDv7(), Email: email, CreatedAt: now, UpdatedAt: now}
		if err := u.Users.Create(ctx, user); err != nil && !errors.Is(err, domainerrors.ErrConflict) {
			return err
		}
	}
	return u.sendCode(ctx, email, "Your Wealthline signup code")
}

// Signup verifies the emailed code, stores the ID document and creates the
// profile (pending review) and a zero balance in one transaction.
func (u *AuthUsecase) Signup(ctx context.Context, input *entities.SignupInput, doc *entities.UploadedFile) (*entities.AuthResult, error) {
	if !entities.IsSupportedCountry(input.Country) {
		return nil, domainerrors.Validation("Select United States or Canada.")
	}
	if len(entities.Digits4(input.TaxIDLast4)) != 4 {
		return nil, domainerrors.Validation("Enter last 4 digits")
	}
	if err := checkDocument(doc, u.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if err := u.verifyCode(ctx, email, input.Code); err != nil {
		return nil, err
	}

	user, err := u.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	now := u.now().UTC()
	if !user.EmailConfirmedAt.Valid {
		if err := u.Users.MarkEmailConfirmed(ctx, user.ID, now); err != nil {
			return nil, err
		}
	}

	docPath := DocumentPath(user.ID, now, doc.Name)
	if err := u.Blobs.Upload(ctx, KYCBucket, docPath, doc.Data); err != nil {
		return nil, domainerrors.Upstream("Failed to upload ID document", err)
	}

	profile := &entities.Profile{
		ID:             user.ID,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          email,
		Country:        null.StringFrom(input.Country),
		Phone:          null.StringFrom(strings.TrimSpace(input.Phone)),
		DOB:            null.StringFrom(strings.TrimSpace(input.DOB)),
		AddressLine1:   null.StringFrom(strings.TrimSpace(input.AddressLine1)),
		AddressLine2:   optionalString(input.AddressLine2),
		City:           null.StringFrom(strings.TrimSpace(input.City)),
		StateRegion:    null.StringFrom(strings.TrimSpace(input.StateRegion)),
		PostalCode:     null.StringFrom(strings.TrimSpace(input.PostalCode)),
		TaxIDLast4:     null.StringFrom(entities.Digits4(input.TaxIDLast4)),
		IDDocumentPath: null.StringFrom(docPath),
		KYCStatus:      entities.KYCPending,
	}

	err = u.UoW.Do(ctx, func(txCtx context.Context) error {
		if err := u.Profiles.Upsert(txCtx, profile); err != nil {
			return err
		}
		return u.Balances.EnsureExists(txCtx, user.ID, now)
	})
	if err != nil {
		return nil, err
	}

	return u.signIn(ctx, user, input.Next)
}

// Login signs in with email and password.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResult, error) {
	user, err := u.Users.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthenticated(msgInvalidLogin)
		}
		return nil, err
	}
	if !user.HasPassword() || !crypto.CheckPassword(input.Password, user.PasswordHash.String) {
		return nil, domainerrors.Unauthenticated(msgInvalidLogin)
	}
	return u.signIn(ctx, user, input.Next)
}

// RequestOTP emails a sign-in code to an existing account.
func (u *AuthUsecase) RequestOTP(ctx context.Context, input *entities.OTPRequestInput) error {
	email := normalizeEmail(input.Email)
	if _, err := u.Users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.Validation(msgOTPSignupDenied)
		}
		return err
	}
	return u.sendCode(ctx, email, "Your Wealthline sign-in code")
}

// VerifyOTP completes a code sign-in.
func (u *AuthUsecase) VerifyOTP(ctx context.Context, input *entities.OTPVerifyInput) (*entities.AuthResult, error) {
	email := normalizeEmail(input.Email)
	user, err := u.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Validation(msgOTPSignupDenied)
		}
		return nil, err
	}
	if err := u.verifyCode(ctx, email, input.Code); err != nil {
		return nil, err
	}
	if !user.EmailConfirmedAt.Valid {
		if err := u.Users.MarkEmailConfirmed(ctx, user.ID, u.now().UTC()); err != nil {
			return nil, err
		}
	}
	return u.signIn(ctx, user, input.Next)
}

// RequestPasswordReset emails a reset link when the account exists. It never
// reports whether it does.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, input *entities.PasswordResetInput) {
	email := normalizeEmail(input.Email)
	user, err := u.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			logger.Error(ctx, "Password reset lookup failed", zap.Error(err))
		}
		return
	}

	token, err := crypto.GenerateRandomToken(resetTokenBytes)
	if err != nil {
		logger.Error(ctx, "Failed to generate reset token", zap.Error(err))
		return
	}
	if err := u.Resets.Save(ctx, token, user.ID.String(), u.cfg.ResetTTL); err != nil {
		logger.Error(ctx, "Failed to store reset token", zap.Error(err))
		return
	}

	link := u.cfg.BaseURL + "/reset-password?token=" + token
	err = u.Mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: "Reset your Wealthline password",
		Text:    "Use this link to choose a new password: " + link + "\nThe link expires in 1 hour.",
		HTML:    fmt.Sprintf(`<p>Use this link to choose a new password:</p><p><a href="%s">Reset password</a></p><p>The link expires in 1 hour.</p>`, link),
	})
	if err != nil {
		logger.Error(ctx, "Failed to send reset email", zap.Error(err))
	}
}

// RecoverPassword sets a new password using an emailed reset token, then
// signs the caller out.
func (u *AuthUsecase) RecoverPassword(ctx context.Context, sessionID string, input *entities.PasswordRecoverInput) error {
	if err := ValidateNewPassword(input.Password, input.Confirm); err != nil {
		return err
	}

	value, err := u.Resets.Consume(ctx, input.Token)
	if err != nil {
		if errors.Is(err, redispkg.ErrTokenNotFound) {
			return domainerrors.Validation("Reset link is invalid or has expired.")
		}
		return err
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		return domainerrors.Validation("Reset link is invalid or has expired.")
	}

	if err := u.setPassword(ctx, userID, input.Password); err != nil {
		return err
	}
	return u.Logout(ctx, sessionID)
}

// UpdatePassword changes the signed-in user's password, then signs them out.
func (u *AuthUsecase) UpdatePassword(ctx context.Context, userID uuid.UUID, sessionID string, input *entities.PasswordUpdateInput) error {
	if err := ValidateNewPassword(input.Password, input.Confirm); err != nil {
		return err
	}
	if err := u.setPassword(ctx, userID, input.Password); err != nil {
		return err
	}
	return u.Logout(ctx, sessionID)
}

// Logout drops the server side of the session.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return u.Sessions.DeleteSession(ctx, sessionID)
}

// Me returns the signed-in user and, when present, their profile.
func (u *AuthUsecase) Me(ctx context.Context, userID uuid.UUID) (*entities.User, *entities.Profile, error) {
	user, err := u.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := u.Profiles.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil, err
		}
		profile = nil
	}
	return user, profile, nil
}

// ValidateNewPassword checks the confirmation first, then the length.
func ValidateNewPassword(password, confirm string) error {
	if password != confirm {
		return domainerrors.Validation(msgPasswordsMismatch)
	}
	if len(password) < minPasswordLength {
		return domainerrors.Validation(msgPasswordTooShort)
	}
	return nil
}

// DocumentPath is where an ID document is stored: <userId>/id-<unixMillis>.<ext>.
func DocumentPath(userID uuid.UUID, at time.Time, fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		ext = "png"
	}
	return fmt.Sprintf("%s/id-%d.%s", userID, at.UnixMilli(), ext)
}

func checkDocument(doc *entities.UploadedFile, maxBytes int64) error {
	if doc == nil || len(doc.Data) == 0 {
		return domainerrors.Validation("Upload a photo of your ID.")
	}
	if maxBytes > 0 && int64(len(doc.Data)) > maxBytes {
		return domainerrors.Validation("ID document is too large.")
	}
	if !strings.HasPrefix(doc.ContentType, "image/") {
		return domainerrors.Validation("ID document must be an image.")
	}
	return nil
}

func (u *AuthUsecase) sendCode(ctx context.Context, email, subject string) error {
	code, err := crypto.GenerateNumericCode(otpCodeLength)
	if err != nil {
		return err
	}
	if err := u.OTPs.Issue(ctx, email, code, u.cfg.OTPTTL); err != nil {
		return err
	}

	minutes := int(u.cfg.OTPTTL / time.Minute)
	err = u.Mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: subject,
		Text:    fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, minutes),
		HTML:    fmt.Sprintf("<p>Your code is <strong>%s</strong>.</p><p>It expires in %d minutes.</p>", code, minutes),
	})
	if err != nil {
		return domainerrors.Upstream("Failed to send code", err)
	}
	return nil
}

func (u *AuthUsecase) verifyCode(ctx context.Context, email, code string) error {
	err := u.OTPs.Verify(ctx, email, strings.TrimSpace(code))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redispkg.ErrOTPNotFound):
		return domainerrors.Validation("Code expired or not requested.")
	case errors.Is(err, redispkg.ErrOTPMismatch):
		return domainerrors.Validation("Invalid code.")
	case errors.Is(err, redispkg.ErrOTPTooManyAttempts):
		return domainerrors.Validation("Too many attempts. Request a new code.")
	default:
		return err
	}
}

func (u *AuthUsecase) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	return u.Users.UpdatePassword(ctx, userID, hash)
}

func (u *AuthUsecase) signIn(ctx context.Context, user *entities.User, next string) (*entities.AuthResult, error) {
	sessionID := utils.GenerateUUIDv7().String()
	pair, err := u.JWT.GenerateTokenPair(user.ID, user.Email, sessionID)
	if err != nil {
		return nil, err
	}

	err = u.Sessions.CreateSession(ctx, sessionID, &redispkg.SessionData{
		UserID:       user.ID.String(),
		Email:        user.Email,
		RefreshToken: pair.RefreshToken,
	}, u.JWT.RefreshExpiry())
	if err != nil {
		return nil, err
	}

	return &entities.AuthResult{
		User:     user,
		Redirect: entities.SafeRedirect(next),
		Session: &entities.Session{
			SessionID:    sessionID,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			AccessTTL:    u.JWT.AccessExpiry(),
			SessionTTL:   u.JWT.RefreshExpiry(),
		},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optionalString(s string) null.String {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
