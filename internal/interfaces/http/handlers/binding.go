package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
)

// bindError turns a gin binding failure into a ValidationError naming the
// first offending field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domainerrors.Validation("Invalid request body.")
	}

	fe := verrs[0]
	field := snakeCase(fe.Field())
	switch fe.Tag() {
	case "required":
		return domainerrors.Validation(field + " is required.")
	case "email":
		return domainerrors.Validation("Enter a valid email address.")
	case "len":
		return domainerrors.Validation(field + " must be exactly " + fe.Param() + " characters.")
	case "min":
		return domainerrors.Validation(field + " must be at least " + fe.Param() + " characters.")
	case "numeric":
		return domainerrors.Validation(field + " must contain digits only.")
	case "oneof":
		return domainerrors.Validation(field + " must be one of: " + fe.Param() + ".")
	default:
		return domainerrors.Validation(field + " is invalid.")
	}
}

// snakeCase maps a Go field name such as TaxIDLast4 to tax_id_last4.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// readUpload reads a multipart file field. A missing field yields nil. At
// most limit+1 bytes are read so oversize files are still detectable.
func readUpload(c *gin.Context, field string, limit int64) (*entities.UploadedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, domainerrors.Validation("Invalid upload.")
	}

	f, err := header.Open()
	if err != nil {
		return nil, domainerrors.Validation("Invalid upload.")
	}
	defer f.Close()

	reader := io.Reader(f)
	if limit > 0 {
		reader = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, domainerrors.Validation("Invalid upload.")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &entities.UploadedFile{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        data,
	}, nil
}
