package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	FirstName      string         `gorm:"type:varchar(120);not null"`
	LastName       string         `gorm:"type:varchar(120);not null"`
	Email          string         `gorm:"type:varchar(255);not null"`
	Country        sql.NullString `gorm:"type:varchar(64)"`
	Phone          sql.NullString `gorm:"type:varchar(32)"`
	DOB            sql.NullString `gorm:"column:dob;type:varchar(32)"`
	AddressLine1   sql.NullString `gorm:"column:address_line1;type:text"`
	AddressLine2   sql.NullString `gorm:"column:address_line2;type:text"`
	City           sql.NullString `gorm:"type:varchar(120)"`
	StateRegion    sql.NullString `gorm:"type:varchar(120)"`
	PostalCode     sql.NullString `gorm:"type:varchar(32)"`
	SSNLast4       sql.NullString `gorm:"column:ssn_last4;type:varchar(4)"`
	ITINLast4      sql.NullString `gorm:"column:itin_last4;type:varchar(4)"`
	TaxIDLast4     sql.NullString `gorm:"column:tax_id_last4;type:varchar(4)"`
	IDDocumentPath sql.NullString `gorm:"column:id_document_path;type:text"`
	KYCStatus      string         `gorm:"column:kyc_status;type:varchar(16);not null;default:'unverified'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
