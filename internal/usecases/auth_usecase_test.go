package usecases_test

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/usecases"
	"wealthline.backend/pkg/crypto"
	"wealthline.backend/pkg/jwt"
	redispkg "wealthline.backend/pkg/redis"
)

const testSessionKey = "0000000000000000000000000000000000000000000000000000000000000000"

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

type authFixture struct {
	uc       *usecases.AuthUsecase
	users    *MockUserRepository
	profiles *MockProfileRepository
	balances *MockBalanceRepository
	uow      *MockUnitOfWork
	mail     *captureMailer
	blobs    *memBlobStore
	jwt      *jwt.JWTService
	sessions *redispkg.SessionStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	setupMiniRedis(t)

	sessions, err := redispkg.NewSessionStore(testSessionKey)
	require.NoError(t, err)

	f := &authFixture{
		users:    new(MockUserRepository),
		profiles: new(MockProfileRepository),
		balances: new(MockBalanceRepository),
		uow:      new(MockUnitOfWork),
		mail:     &captureMailer{},
		blobs:    newMemBlobStore(),
		jwt:      jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour),
		sessions: sessions,
	}
	f.uc = usecases.NewAuthUsecase(usecases.AuthDependencies{
		Users:    f.users,
		Profiles: f.profiles,
		Balances: f.balances,
		UoW:      f.uow,
		JWT:      f.jwt,
		Sessions: sessions,
		OTPs:     redispkg.NewOTPStore(5),
		Resets:   redispkg.NewTokenStore("pwreset:"),
		Blobs:    f.blobs,
		Mail:     f.mail,
	}, usecases.AuthConfig{
		BaseURL:        "https://app.wealthline.test",
		OTPTTL:         10 * time.Minute,
		ResetTTL:       time.Hour,
		MaxUploadBytes: 1 << 20,
	})
	return f
}

func (f *authFixture) lastCode(t *testing.T) string {
	t.Helper()
	code := codePattern.FindString(f.mail.last().Text)
	require.NotEmpty(t, code, "no code in mail")
	return code
}

func signupInput(email, code string) *entities.SignupInput {
	return &entities.SignupInput{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Country:      entities.CountryCanada,
		Email:        email,
		Phone:        "+1 416 555 0100",
		DOB:          "1990-01-01",
		AddressLine1: "1 King St",
		City:         "Toronto",
		StateRegion:  "ON",
		PostalCode:   "M5H 1A1",
		TaxIDLast4:   "1234",
		Code:         code,
	}
}

func pngDoc() *entities.UploadedFile {
	return &entities.UploadedFile{Name: "passport.PNG", ContentType: "image/png", Size: 4, Data: []byte{0x89, 'P', 'N', 'G'}}
}

func TestAuthUsecase_SignupFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := &entities.User{ID: uuid.New(), Email: "ada@mail.com"}

	f.users.On("GetByEmail", ctx, "ada@mail.com").Return(nil, domainerrors.ErrNotFound).Once()
	f.users.On("Create", ctx, mock.AnythingOfType("*entities.User")).Return(nil).Once()
	require.NoError(t, f.uc.SignupCode(ctx, &entities.SignupCodeInput{Email: " Ada@Mail.com "}))
	assert.Equal(t, "ada@mail.com", f.mail.last().To)
	code := f.lastCode(t)

	f.users.On("GetByEmail", ctx, "ada@mail.com").Return(user, nil)
	f.users.On("MarkEmailConfirmed", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	f.uow.On("Do", ctx, mock.Anything).Return(nil).Once()
	f.profiles.On("Upsert", ctx, mock.MatchedBy(func(p *entities.Profile) bool {
		return p.ID == user.ID &&
			p.KYCStatus == entities.KYCPending &&
			p.TaxIDLast4.String == "1234" &&
			!p.AddressLine2.Valid &&
			strings.HasPrefix(p.IDDocumentPath.String, user.ID.String()+"/id-") &&
			strings.HasSuffix(p.IDDocumentPath.String, ".png")
	})).Return(nil).Once()
	f.balances.On("EnsureExists", ctx, user.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	in := signupInput("ada@mail.com", code)
	in.Next = "/invest/create"
	res, err := f.uc.Signup(ctx, in, pngDoc())
	require.NoError(t, err)
	assert.Equal(t, "/invest/create", res.Redirect)
	require.NotNil(t, res.Session)
	assert.NotEmpty(t, res.Session.AccessToken)
	assert.Len(t, f.blobs.objects, 1)

	stored, err := f.sessions.GetSession(ctx, res.Session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), stored.UserID)

	f.users.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.balances.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestAuthUsecase_SignupRejectsWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "ada@mail.com").Return(&entities.User{ID: uuid.New(), Email: "ada@mail.com"}, nil)
	require.NoError(t, f.uc.SignupCode(ctx, &entities.SignupCodeInput{Email: "ada@mail.com"}))
	code := f.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	_, err := f.uc.Signup(ctx, signupInput("ada@mail.com", wrong), pngDoc())
	requireAppError(t, err, http.StatusBadRequest, "Invalid code.")
	assert.Empty(t, f.blobs.objects)
	f.profiles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAuthUsecase_SignupValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.uc.Signup(ctx, signupInput("ada@mail.com", "123456"), nil)
	requireAppError(t, err, http.StatusBadRequest, "Upload a photo of your ID.")

	_, err = f.uc.Signup(ctx, signupInput("ada@mail.com", "123456"), &entities.UploadedFile{Name: "id.pdf", ContentType: "application/pdf", Data: []byte("x")})
	requireAppError(t, err, http.StatusBadRequest, "ID document must be an image.")

	big := &entities.UploadedFile{Name: "id.png", ContentType: "image/png", Data: make([]byte, 2<<20)}
	_, err = f.uc.Signup(ctx, signupInput("ada@mail.com", "123456"), big)
	requireAppError(t, err, http.StatusBadRequest, "ID document is too large.")

	in := signupInput("ada@mail.com", "123456")
	in.Country = "Mexico"
	_, err = f.uc.Signup(ctx, in, pngDoc())
	requireAppError(t, err, http.StatusBadRequest, "Select United States or Canada.")

	_, err = f.uc.Signup(ctx, signupInput("ada@mail.com", "123456"), pngDoc())
	requireAppError(t, err, http.StatusBadRequest, "Code expired or not requested.")
}

func TestAuthUsecase_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	hash, err := crypto.HashPassword("correct-horse")
	require.NoError(t, err)
	user := &entities.User{ID: uuid.New(), Email: "ada@mail.com", PasswordHash: null.StringFrom(hash)}
	f.users.On("GetByEmail", ctx, "ada@mail.com").Return(user, nil)
	f.users.On("GetByEmail", ctx, "ghost@mail.com").Return(nil, domainerrors.ErrNotFound)

	res, err := f.uc.Login(ctx, &entities.LoginInput{Email: "ADA@mail.com", Password: "correct-horse", Next: "//evil.example"})
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", res.Redirect)
	assert.Equal(t, user, res.User)

	_, err = f.uc.Login(ctx, &entities.LoginInput{Email: "ada@mail.com", Password: "wrong"})
	requireAppError(t, err, http.StatusUnauthorized, "Invalid login credentials")

	_, err = f.uc.Login(ctx, &entities.LoginInput{Email: "ghost@mail.com", Password: "x"})
	requireAppError(t, err, http.StatusUnauthorized, "Invalid login credentials")
}

func TestAuthUsecase_OTPLoginReturningUsersOnly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	confirmed := &entities.User{ID: uuid.New(), Email: "ada@mail.com", EmailConfirmedAt: null.TimeFrom(time.Now())}
	f.users.On("GetByEmail", ctx, "ada@mail.com").Return(confirmed, nil)
	f.users.On("GetByEmail", ctx, "new@mail.com").Return(nil, domainerrors.ErrNotFound)

	err := f.uc.RequestOTP(ctx, &entities.OTPRequestInput{Email: "new@mail.com"})
	requireAppError(t, err, http.StatusBadRequest, "Signups not allowed for otp")
	assert.Empty(t, f.mail.sent)

	require.NoError(t, f.uc.RequestOTP(ctx, &entities.OTPRequestInput{Email: "ada@mail.com"}))
	res, err := f.uc.VerifyOTP(ctx, &entities.OTPVerifyInput{Email: "ada@mail.com", Code: f.lastCode(t), Next: "/withdraw"})
	require.NoError(t, err)
	assert.Equal(t, "/withdraw", res.Redirect)
	f.users.AssertNotCalled(t, "MarkEmailConfirmed", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthUsecase_ResolveSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	hash, err := crypto.HashPassword("correct-horse")
	require.NoError(t, err)
	user := &entities.User{ID: uuid.New(), Email: "ada@mail.com", PasswordHash: null.StringFrom(hash)}
	f.users.On("GetByEmail", ctx, "ada@mail.com").Return(user, nil)

	res, err := f.uc.Login(ctx, &entities.LoginInput{Email: "ada@mail.com", Password: "correct-horse"})
	require.NoError(t, err)

	identity, refreshed := f.uc.ResolveSession(ctx, res.Session.AccessToken, res.Session.SessionID)
	require.NotNil(t, identity)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Nil(t, refreshed)

	identity, refreshed = f.uc.ResolveSession(ctx, "stale", res.Session.SessionID)
	require.NotNil(t, identity)
	require.NotNil(t, refreshed)
	claims, err := f.jwt.ValidateTokenOfType(refreshed.AccessToken, jwt.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, res.Session.SessionID, claims.SessionID)

	identity, refreshed = f.uc.ResolveSession(ctx, "", "unknown-session")
	assert.Nil(t, identity)
	assert.Nil(t, refreshed)

	identity, _ = f.uc.ResolveSession(ctx, res.Session.RefreshToken, "")
	assert.Nil(t, identity, "refresh tokens are not access tokens")

	require.NoError(t, f.uc.Logout(ctx, res.Session.SessionID))
	identity, _ = f.uc.ResolveSession(ctx, "", res.Session.SessionID)
	assert.Nil(t, identity)
}

func TestAuthUsecase_PasswordResetAndRecover(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := &entities.User{ID: uuid.New(), Email: "ada@mail.com"}
	f.users.On("GetByEmail", ctx, "ada@mail.com").Return(user, nil)
	f.users.On("GetByEmail", ctx, "ghost@mail.com").Return(nil, domainerrors.ErrNotFound)
	f.users.On("UpdatePassword", ctx, user.ID, mock.AnythingOfType("string")).Return(nil).Once()

	f.uc.RequestPasswordReset(ctx, &entities.PasswordResetInput{Email: "ghost@mail.com"})
	assert.Empty(t, f.mail.sent)

	f.uc.RequestPasswordReset(ctx, &entities.PasswordResetInput{Email: "ada@mail.com"})
	require.Len(t, f.mail.sent, 1)
	text := f.mail.last().Text
	idx := strings.Index(text, "https://app.wealthline.test/reset-password?token=")
	require.GreaterOrEqual(t, idx, 0)
	token := strings.Fields(text[idx+len("https://app.wealthline.test/reset-password?token="):])[0]

	err := f.uc.RecoverPassword(ctx, "", &entities.PasswordRecoverInput{Token: token, Password: "short", Confirm: "different"})
	requireAppError(t, err, http.StatusBadRequest, "Passwords do not match.")

	err = f.uc.RecoverPassword(ctx, "", &entities.PasswordRecoverInput{Token: token, Password: "short", Confirm: "short"})
	requireAppError(t, err, http.StatusBadRequest, "Password must be at least 8 characters.")

	require.NoError(t, f.uc.RecoverPassword(ctx, "", &entities.PasswordRecoverInput{Token: token, Password: "new-password", Confirm: "new-password"}))

	err = f.uc.RecoverPassword(ctx, "", &entities.PasswordRecoverInput{Token: token, Password: "new-password", Confirm: "new-password"})
	requireAppError(t, err, http.StatusBadRequest, "Reset link is invalid or has expired.")
	f.users.AssertExpectations(t)
}

func TestAuthUsecase_UpdatePasswordSignsOut(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, f.sessions.CreateSession(ctx, "sid-1", &redispkg.SessionData{UserID: userID.String()}, time.Hour))
	f.users.On("UpdatePassword", ctx, userID, mock.AnythingOfType("string")).Return(nil).Once()

	require.NoError(t, f.uc.UpdatePassword(ctx, userID, "sid-1", &entities.PasswordUpdateInput{Password: "new-password", Confirm: "new-password"}))

	_, err := f.sessions.GetSession(ctx, "sid-1")
	assert.True(t, redispkg.IsNil(err))
}

func TestAuthUsecase_Me(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := &entities.User{ID: uuid.New(), Email: "ada@mail.com"}
	f.users.On("GetByID", ctx, user.ID).Return(user, nil)
	f.profiles.On("GetByID", ctx, user.ID).Return(nil, domainerrors.ErrNotFound)

	gotUser, profile, err := f.uc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, gotUser)
	assert.Nil(t, profile)
}

func TestDocumentPath(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	at := time.UnixMilli(1700000000123)

	assert.Equal(t, "11111111-1111-1111-1111-111111111111/id-1700000000123.jpg", usecases.DocumentPath(id, at, "scan.JPG"))
	assert.Equal(t, "11111111-1111-1111-1111-111111111111/id-1700000000123.png", usecases.DocumentPath(id, at, "scan"))
}
