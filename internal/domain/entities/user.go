package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// User is an account in the identity store.
type User struct {
	ID               uuid.UUID   `json:"id"`
	Email            string      `json:"email"`
	PasswordHash     null.String `json:"-"`
	EmailConfirmedAt null.Time   `json:"emailConfirmedAt"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// HasPassword reports whether password sign-in is possible.
func (u *User) HasPassword() bool {
	return u.PasswordHash.Valid && u.PasswordHash.String != ""
}

// Identity is the authenticated principal resolved from session cookies.
type Identity struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}

// Session is a freshly issued or refreshed set of cookie values.
type Session struct {
	SessionID    string        `json:"-"`
	AccessToken  string        `json:"-"`
	RefreshToken string        `json:"-"`
	AccessTTL    time.Duration `json:"-"`
	SessionTTL   time.Duration `json:"-"`
}

// SignupCodeInput requests an emailed signup code.
type SignupCodeInput struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

// SignupInput is the multipart signup form minus the ID document file.
type SignupInput struct {
	FirstName    string `form:"first_name" binding:"required,min=1"`
	LastName     string `form:"last_name" binding:"required,min=1"`
	Country      string `form:"country" binding:"required,oneof='United States' Canada"`
	Email        string `form:"email" binding:"required,email"`
	Phone        string `form:"phone" binding:"required,min=6"`
	DOB          string `form:"dob" binding:"required,min=1"`
	AddressLine1 string `form:"address_line1" binding:"required,min=2"`
	AddressLine2 string `form:"address_line2"`
	City         string `form:"city" binding:"required,min=2"`
	StateRegion  string `form:"state_region" binding:"required,min=1"`
	PostalCode   string `form:"postal_code" binding:"required,min=2"`
	TaxIDLast4   string `form:"tax_id_last4" binding:"required,len=4,numeric"`
	Code         string `form:"code" binding:"required,len=6"`
	Next         string `form:"next"`
}

// UploadedFile is a document received from a client.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// LoginInput represents input for password login
type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
	Next     string `json:"next" form:"next"`
}

// OTPRequestInput asks for a login code for an existing account.
type OTPRequestInput struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

// OTPVerifyInput completes a code login.
type OTPVerifyInput struct {
	Email string `json:"email" form:"email" binding:"required,email"`
	Code  string `json:"code" form:"code" binding:"required,len=6,numeric"`
	Next  string `json:"next" form:"next"`
}

// PasswordResetInput requests a reset link.
type PasswordResetInput struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

// PasswordRecoverInput sets a new password with a reset token.
type PasswordRecoverInput struct {
	Token    string `json:"token" form:"token" binding:"required"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

// PasswordUpdateInput sets a new password for the signed-in user.
type PasswordUpdateInput struct {
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

// AuthResult is returned by every successful sign-in flow.
type AuthResult struct {
	User     *User    `json:"user"`
	Redirect string   `json:"redirect"`
	Session  *Session `json:"-"`
}

// SafeRedirect honours next only when it is a local path.
func SafeRedirect(next string) string {
	if len(next) > 0 && next[0] == '/' && (len(next) == 1 || (next[1] != '/' && next[1] != '\\')) {
		return next
	}
	return "/dashboard"
}
