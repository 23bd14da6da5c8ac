package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/interfaces/http/middleware"
	"wealthline.backend/internal/usecases"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authServiceStub struct {
	signupCodeFn func(ctx context.Context, input *entities.SignupCodeInput) error
	signupFn     func(ctx context.Context, input *entities.SignupInput, doc *entities.UploadedFile) (*entities.AuthResult, error)
	loginFn      func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResult, error)
	requestOTPFn func(ctx context.Context, input *entities.OTPRequestInput) error
	verifyOTPFn  func(ctx context.Context, input *entities.OTPVerifyInput) (*entities.AuthResult, error)
	resetFn      func(ctx context.Context, input *entities.PasswordResetInput)
	recoverFn    func(ctx context.Context, sessionID string, input *entities.PasswordRecoverInput) error
	updateFn     func(ctx context.Context, userID uuid.UUID, sessionID string, input *entities.PasswordUpdateInput) error
	logoutFn     func(ctx context.Context, sessionID string) error
	meFn         func(ctx context.Context, userID uuid.UUID) (*entities.User, *entities.Profile, error)
}

func (s authServiceStub) SignupCode(ctx context.Context, input *entities.SignupCodeInput) error {
	return s.signupCodeFn(ctx, input)
}
func (s authServiceStub) Signup(ctx context.Context, input *entities.SignupInput, doc *entities.UploadedFile) (*entities.AuthResult, error) {
	return s.signupFn(ctx, input, doc)
}
func (s authServiceStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResult, error) {
	return s.loginFn(ctx, input)
}
func (s authServiceStub) RequestOTP(ctx context.Context, input *entities.OTPRequestInput) error {
	return s.requestOTPFn(ctx, input)
}
func (s authServiceStub) VerifyOTP(ctx context.Context, input *entities.OTPVerifyInput) (*entities.AuthResult, error) {
	return s.verifyOTPFn(ctx, input)
}
func (s authServiceStub) RequestPasswordReset(ctx context.Context, input *entities.PasswordResetInput) {
	s.resetFn(ctx, input)
}
func (s authServiceStub) RecoverPassword(ctx context.Context, sessionID string, input *entities.PasswordRecoverInput) error {
	return s.recoverFn(ctx, sessionID, input)
}
func (s authServiceStub) UpdatePassword(ctx context.Context, userID uuid.UUID, sessionID string, input *entities.PasswordUpdateInput) error {
	return s.updateFn(ctx, userID, sessionID, input)
}
func (s authServiceStub) Logout(ctx context.Context, sessionID string) error {
	return s.logoutFn(ctx, sessionID)
}
func (s authServiceStub) Me(ctx context.Context, userID uuid.UUID) (*entities.User, *entities.Profile, error) {
	return s.meFn(ctx, userID)
}

type profileServiceStub struct {
	getFn     func(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
	saveFn    func(ctx context.Context, userID uuid.UUID, edited entities.ProfileForm) (*usecases.ProfileSaveResult, error)
	uploadFn  func(ctx context.Context, userID uuid.UUID, doc *entities.UploadedFile) (*entities.Profile, error)
	previewFn func(ctx context.Context, userID uuid.UUID) (string, error)
}

func (s profileServiceStub) Get(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	return s.getFn(ctx, userID)
}
func (s profileServiceStub) Save(ctx context.Context, userID uuid.UUID, edited entities.ProfileForm) (*usecases.ProfileSaveResult, error) {
	return s.saveFn(ctx, userID, edited)
}
func (s profileServiceStub) UploadIDDocument(ctx context.Context, userID uuid.UUID, doc *entities.UploadedFile) (*entities.Profile, error) {
	return s.uploadFn(ctx, userID, doc)
}
func (s profileServiceStub) PreviewURL(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.previewFn(ctx, userID)
}

type withdrawalServiceStub struct {
	summaryFn func(ctx context.Context, identity *entities.Identity) (*usecases.WithdrawSummary, error)
	prepareFn func(ctx context.Context, identity *entities.Identity, form entities.WithdrawalForm) (*entities.WithdrawalHandoff, error)
}

func (s withdrawalServiceStub) Summary(ctx context.Context, identity *entities.Identity) (*usecases.WithdrawSummary, error) {
	return s.summaryFn(ctx, identity)
}
func (s withdrawalServiceStub) Prepare(ctx context.Context, identity *entities.Identity, form entities.WithdrawalForm) (*entities.WithdrawalHandoff, error) {
	return s.prepareFn(ctx, identity, form)
}

type adminServiceStub struct {
	authorizeFn func(ctx context.Context, callerID uuid.UUID) error
	handleFn    func(ctx context.Context, callerID uuid.UUID, action string, payload json.RawMessage) (*entities.CommandResult, error)
	plansFn     func(ctx context.Context, callerID uuid.UUID) ([]*entities.Plan, error)
	usersFn     func(ctx context.Context, callerID uuid.UUID, page, limit int) (*usecases.UserList, error)
}

func (s adminServiceStub) Authorize(ctx context.Context, callerID uuid.UUID) error {
	return s.authorizeFn(ctx, callerID)
}
func (s adminServiceStub) Handle(ctx context.Context, callerID uuid.UUID, action string, payload json.RawMessage) (*entities.CommandResult, error) {
	return s.handleFn(ctx, callerID, action, payload)
}
func (s adminServiceStub) ListPlans(ctx context.Context, callerID uuid.UUID) ([]*entities.Plan, error) {
	return s.plansFn(ctx, callerID)
}
func (s adminServiceStub) ListUsers(ctx context.Context, callerID uuid.UUID, page, limit int) (*usecases.UserList, error) {
	return s.usersFn(ctx, callerID, page, limit)
}

type pagesServiceStub struct {
	landingFn      func(ctx context.Context) (*usecases.LandingView, error)
	dashboardFn    func(ctx context.Context, identity *entities.Identity) (*usecases.DashboardView, error)
	investFn       func(ctx context.Context, identity *entities.Identity) (*usecases.InvestView, error)
	investCreateFn func(ctx context.Context, identity *entities.Identity) (*usecases.InvestCreateView, error)
	profileFn      func(ctx context.Context, identity *entities.Identity) (*usecases.ProfileView, error)
}

func (s pagesServiceStub) Landing(ctx context.Context) (*usecases.LandingView, error) {
	return s.landingFn(ctx)
}
func (s pagesServiceStub) Dashboard(ctx context.Context, identity *entities.Identity) (*usecases.DashboardView, error) {
	return s.dashboardFn(ctx, identity)
}
func (s pagesServiceStub) Invest(ctx context.Context, identity *entities.Identity) (*usecases.InvestView, error) {
	return s.investFn(ctx, identity)
}
func (s pagesServiceStub) InvestCreate(ctx context.Context, identity *entities.Identity) (*usecases.InvestCreateView, error) {
	return s.investCreateFn(ctx, identity)
}
func (s pagesServiceStub) ProfilePage(ctx context.Context, identity *entities.Identity) (*usecases.ProfileView, error) {
	return s.profileFn(ctx, identity)
}

// asUser injects an identity the way SessionMiddleware does.
func asUser(id uuid.UUID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, &entities.Identity{UserID: id, Email: email})
		c.Set(middleware.UserIDKey, id)
		c.Set(middleware.UserEmailKey, email)
		c.Set(middleware.SessionIDKey, "sid-current")
		c.Next()
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		b, _ := json.Marshal(v)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type formFile struct {
	field, name, contentType string
	data                     []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func httptestGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
