package entities

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// KYCStatus represents KYC verification status
type KYCStatus string

const (
	KYCUnverified KYCStatus = "unverified"
	KYCPending    KYCStatus = "pending"
	KYCVerified   KYCStatus = "verified"
)

const (
	CountryUnitedStates = "United States"
	CountryCanada       = "Canada"
)

// IsSupportedCountry reports whether accounts may be held from country.
func IsSupportedCountry(country string) bool {
	return country == CountryUnitedStates || country == CountryCanada
}

// Profile is the KYC record of a user. ID equals the user id.
type Profile struct {
	ID             uuid.UUID   `json:"id"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Email          string      `json:"email"`
	Country        null.String `json:"country"`
	Phone          null.String `json:"phone"`
	DOB            null.String `json:"dob"`
	AddressLine1   null.String `json:"addressLine1"`
	AddressLine2   null.String `json:"addressLine2"`
	City           null.String `json:"city"`
	StateRegion    null.String `json:"stateRegion"`
	PostalCode     null.String `json:"postalCode"`
	SSNLast4       null.String `json:"ssnLast4"`
	ITINLast4      null.String `json:"itinLast4"`
	TaxIDLast4     null.String `json:"taxIdLast4"`
	IDDocumentPath null.String `json:"idDocumentPath"`
	KYCStatus      KYCStatus   `json:"kycStatus"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// DisplayName joins first and last name, "User" when both are empty.
func (p *Profile) DisplayName() string {
	if p == nil {
		return "User"
	}
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		return "User"
	}
	return name
}

// Initials returns the upper-cased first letters of first and last name, or "U".
func Initials(first, last string) string {
	var b strings.Builder
	for _, s := range []string{first, last} {
		for _, r := range s {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	if b.Len() == 0 {
		return "U"
	}
	return b.String()
}

// Digits4 strips non-digits and keeps at most the first four.
func Digits4(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	return b.String()
}

// ProfileForm is the editable part of a profile. It is a value type: every
// edit produces a new ProfileForm and the saved snapshot is never mutated.
type ProfileForm struct {
	Country        string `json:"country"`
	Phone          string `json:"phone"`
	DOB            string `json:"dob"`
	AddressLine1   string `json:"address_line1"`
	AddressLine2   string `json:"address_line2"`
	City           string `json:"city"`
	StateRegion    string `json:"state_region"`
	PostalCode     string `json:"postal_code"`
	SSNLast4       string `json:"ssn_last4"`
	ITINLast4      string `json:"itin_last4"`
	IDDocumentPath string `json:"id_document_path"`
}

// FormFromProfile snapshots the editable fields of p.
func FormFromProfile(p *Profile) ProfileForm {
	if p == nil {
		return ProfileForm{}
	}
	return ProfileForm{
		Country:        p.Country.String,
		Phone:          p.Phone.String,
		DOB:            p.DOB.String,
		AddressLine1:   p.AddressLine1.String,
		AddressLine2:   p.AddressLine2.String,
		City:           p.City.String,
		StateRegion:    p.StateRegion.String,
		PostalCode:     p.PostalCode.String,
		SSNLast4:       p.SSNLast4.String,
		ITINLast4:      p.ITINLast4.String,
		IDDocumentPath: p.IDDocumentPath.String,
	}
}

// Normalized trims whitespace and reduces the last4 fields to digits.
func (f ProfileForm) Normalized() ProfileForm {
	f.Country = strings.TrimSpace(f.Country)
	f.Phone = strings.TrimSpace(f.Phone)
	f.DOB = strings.TrimSpace(f.DOB)
	f.AddressLine1 = strings.TrimSpace(f.AddressLine1)
	f.AddressLine2 = strings.TrimSpace(f.AddressLine2)
	f.City = strings.TrimSpace(f.City)
	f.StateRegion = strings.TrimSpace(f.StateRegion)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.SSNLast4 = Digits4(f.SSNLast4)
	f.ITINLast4 = Digits4(f.ITINLast4)
	f.IDDocumentPath = strings.TrimSpace(f.IDDocumentPath)
	return f
}

// ProfileColumn names an editable profiles column.
type ProfileColumn string

const (
	ColCountry        ProfileColumn = "country"
	ColPhone          ProfileColumn = "phone"
	ColDOB            ProfileColumn = "dob"
	ColAddressLine1   ProfileColumn = "address_line1"
	ColAddressLine2   ProfileColumn = "address_line2"
	ColCity           ProfileColumn = "city"
	ColStateRegion    ProfileColumn = "state_region"
	ColPostalCode     ProfileColumn = "postal_code"
	ColSSNLast4       ProfileColumn = "ssn_last4"
	ColITINLast4      ProfileColumn = "itin_last4"
	ColIDDocumentPath ProfileColumn = "id_document_path"
)

var kycColumns = map[ProfileColumn]bool{
	ColCountry:        true,
	ColAddressLine1:   true,
	ColAddressLine2:   true,
	ColCity:           true,
	ColStateRegion:    true,
	ColPostalCode:     true,
	ColIDDocumentPath: true,
}

// ProfileChanges maps changed columns to their new value. Empty strings mean NULL.
type ProfileChanges map[ProfileColumn]string

// DiffProfileForm returns the columns whose value differs between saved and edited.
func DiffProfileForm(saved, edited ProfileForm) ProfileChanges {
	changes := ProfileChanges{}
	pairs := []struct {
		col  ProfileColumn
		a, b string
	}{
		{ColCountry, saved.Country, edited.Country},
		{ColPhone, saved.Phone, edited.Phone},
		{ColDOB, saved.DOB, edited.DOB},
		{ColAddressLine1, saved.AddressLine1, edited.AddressLine1},
		{ColAddressLine2, saved.AddressLine2, edited.AddressLine2},
		{ColCity, saved.City, edited.City},
		{ColStateRegion, saved.StateRegion, edited.StateRegion},
		{ColPostalCode, saved.PostalCode, edited.PostalCode},
		{ColSSNLast4, saved.SSNLast4, edited.SSNLast4},
		{ColITINLast4, saved.ITINLast4, edited.ITINLast4},
		{ColIDDocumentPath, saved.IDDocumentPath, edited.IDDocumentPath},
	}
	for _, p := range pairs {
		if p.a != p.b {
			changes[p.col] = p.b
		}
	}
	return changes
}

// IsEmpty is the dirty test: nothing to save.
func (c ProfileChanges) IsEmpty() bool {
	return len(c) == 0
}

// TouchesKYC reports whether an address or ID document column changed.
func (c ProfileChanges) TouchesKYC() bool {
	for col := range c {
		if kycColumns[col] {
			return true
		}
	}
	return false
}

// NextKYCStatus applies the review rule: KYC-relevant edits move an
// unverified profile to pending. Nothing here ever grants verified.
func NextKYCStatus(current KYCStatus, changes ProfileChanges) KYCStatus {
	if current == "" {
		current = KYCUnverified
	}
	if current == KYCUnverified && changes.TouchesKYC() {
		return KYCPending
	}
	return current
}
