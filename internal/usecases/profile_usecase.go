package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/domain/repositories"
)

// PreviewTTL is how long a signed ID document link stays valid.
const PreviewTTL = 300 * time.Second

// ProfileSaveResult reports whether a save wrote anything.
type ProfileSaveResult struct {
	Saved   bool              `json:"saved"`
	Profile *entities.Profile `json:"profile"`
}

// ProfileUsecase edits the KYC profile of the signed-in user
type ProfileUsecase struct {
	profiles  repositories.ProfileRepository
	blobs     BlobStore
	maxUpload int64
	now       func() time.Time
}

func NewProfileUsecase(profiles repositories.ProfileRepository, blobs BlobStore, maxUpload int64) *ProfileUsecase {
	return &ProfileUsecase{profiles: profiles, blobs: blobs, maxUpload: maxUpload, now: time.Now}
}

func (u *ProfileUsecase) Get(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	return u.profiles.GetByID(ctx, userID)
}

// Save writes the columns that differ from the stored profile. The ID
// document path is only changed through UploadIDDocument.
func (u *ProfileUsecase) Save(ctx context.Context, userID uuid.UUID, edited entities.ProfileForm) (*ProfileSaveResult, error) {
	current, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	saved := entities.FormFromProfile(current)
	edited = edited.Normalized()
	edited.IDDocumentPath = saved.IDDocumentPath

	if !entities.IsSupportedCountry(edited.Country) {
		return nil, domainerrors.Validation("Select United States or Canada.")
	}
	if edited.SSNLast4 != "" && len(edited.SSNLast4) != 4 {
		return nil, domainerrors.Validation("SSN last 4 must be 4 digits.")
	}
	if edited.ITINLast4 != "" && len(edited.ITINLast4) != 4 {
		return nil, domainerrors.Validation("ITIN last 4 must be 4 digits.")
	}

	changes := entities.DiffProfileForm(saved, edited)
	if changes.IsEmpty() {
		return &ProfileSaveResult{Saved: false, Profile: current}, nil
	}

	status := entities.NextKYCStatus(current.KYCStatus, changes)
	if err := u.profiles.ApplyChanges(ctx, userID, changes, status); err != nil {
		return nil, err
	}

	updated, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileSaveResult{Saved: true, Profile: updated}, nil
}

// UploadIDDocument stores a new ID document and points the profile at it.
func (u *ProfileUsecase) UploadIDDocument(ctx context.Context, userID uuid.UUID, doc *entities.UploadedFile) (*entities.Profile, error) {
	if err := checkDocument(doc, u.maxUpload); err != nil {
		return nil, err
	}
	current, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	docPath := DocumentPath(userID, u.now().UTC(), doc.Name)
	if err := u.blobs.Upload(ctx, KYCBucket, docPath, doc.Data); err != nil {
		return nil, domainerrors.Upstream("Failed to upload ID document", err)
	}

	changes := entities.ProfileChanges{entities.ColIDDocumentPath: docPath}
	status := entities.NextKYCStatus(current.KYCStatus, changes)
	if err := u.profiles.ApplyChanges(ctx, userID, changes, status); err != nil {
		return nil, err
	}
	return u.profiles.GetByID(ctx, userID)
}

// PreviewURL returns a short-lived link to the stored ID document.
func (u *ProfileUsecase) PreviewURL(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.previewFor(profile)
}

func (u *ProfileUsecase) previewFor(profile *entities.Profile) (string, error) {
	if profile == nil || !profile.IDDocumentPath.Valid || profile.IDDocumentPath.String == "" {
		return "", domainerrors.NotFound("No ID document on file.")
	}
	link, err := u.blobs.SignedURL(KYCBucket, profile.IDDocumentPath.String, PreviewTTL)
	if err != nil {
		return "", domainerrors.Upstream("Failed to sign document link", err)
	}
	return link, nil
}
