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

type profileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
	Save(ctx context.Context, userID uuid.UUID, edited entities.ProfileForm) (*usecases.ProfileSaveResult, error)
	UploadIDDocument(ctx context.Context, userID uuid.UUID, doc *entities.UploadedFile) (*entities.Profile, error)
	PreviewURL(ctx context.Context, userID uuid.UUID) (string, error)
}

// ProfileHandler serves the signed-in user's KYC profile
type ProfileHandler struct {
	profiles  profileService
	maxUpload int64
}

func NewProfileHandler(profiles *usecases.ProfileUsecase, maxUpload int64) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, maxUpload: maxUpload}
}

// Get returns the profile
// GET /api/v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// Save writes the changed profile fields
// PUT /api/v1/profile
func (h *ProfileHandler) Save(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	var form entities.ProfileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, domainerrors.Validation("Invalid request body."))
		return
	}

	result, err := h.profiles.Save(c.Request.Context(), userID, form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// UploadIDDocument replaces the ID document
// POST /api/v1/profile/id-document (multipart field "file")
func (h *ProfileHandler) UploadIDDocument(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	doc, err := readUpload(c, "file", h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.profiles.UploadIDDocument(c.Request.Context(), userID, doc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// Preview returns a short-lived link to the ID document
// GET /api/v1/profile/id-document/preview
func (h *ProfileHandler) Preview(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	link, err := h.profiles.PreviewURL(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": link, "expiresIn": int(usecases.PreviewTTL.Seconds())})
}
