package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/talenthub/internal/apperror"
	"github.com/sakif/talenthub/internal/extract"
	"github.com/sakif/talenthub/internal/model"
	"github.com/sakif/talenthub/internal/repository"
)

// defaultAvatarPath is served to accounts that never uploaded a photo.
const defaultAvatarPath = "/images/default-avatar.png"

// FileUpload is one file from a multipart upload, already read into memory.
// ContentType is the type the client declared, not sniffed from the bytes.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProfileService orchestrates resume/photo uploads and profile reads.
type ProfileService struct {
	users   repository.UserRepository
	baseURL string
	logger  *slog.Logger
}

// NewProfileService creates a ProfileService.
// baseURL is the public host used for filename-based photo URLs.
func NewProfileService(users repository.UserRepository, baseURL string, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		users:   users,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Upload attaches a resume and a photo to the account.
//
// Both files must be present; a partial upload is rejected before anything
// is read or written, leaving the prior record unchanged. The resume is
// dispatched to a text extractor by its declared MIME type — an unrecognized
// type yields empty text, which is fine: the uploaded-flag is set
// unconditionally on any successful upload call, on the grounds that both
// files were supplied even when extraction produced nothing.
func (s *ProfileService) Upload(ctx context.Context, userID string, resume, photo *FileUpload) (*model.ProfileView, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("user token required")
	}
	if resume == nil || photo == nil || len(resume.Data) == 0 || len(photo.Data) == 0 {
		return nil, apperror.ValidationFailed("files", "resume and photo are required")
	}

	text, err := extract.Text(resume.ContentType, resume.Data)
	if err != nil {
		return nil, fmt.Errorf("service/profile: extracting resume text: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.ResumeText = text
	user.Photo = base64.StdEncoding.EncodeToString(photo.Data)
	user.ResumeUploaded = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/profile: saving upload for user %s: %w", userID, err)
	}

	s.logger.Info("resume uploaded",
		slog.String("userID", userID),
		slog.String("resumeType", resume.ContentType),
		slog.Int("resumeBytes", len(resume.Data)),
		slog.Int("photoBytes", len(photo.Data)),
	)

	view := ProfileViewOf(user, s.baseURL)
	return &view, nil
}

// GetProfile returns the account's non-secret fields.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.ProfileView, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("user token required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := ProfileViewOf(user, s.baseURL)
	return &view, nil
}

// UserViewOf builds the account summary view.
//
// ResumeUploaded here is recomputed from the raw fields via User.HasResume,
// never read from the cached column — one derivation rule for every read
// path. The cached column exists only so the admin dashboard can COUNT it.
func UserViewOf(u *model.User, baseURL string) model.UserView {
	return model.UserView{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ResumeUploaded: u.HasResume(),
		ProfileImage:   profileImageURL(u.Photo, baseURL),
	}
}

// ProfileViewOf builds the full profile view.
func ProfileViewOf(u *model.User, baseURL string) model.ProfileView {
	return model.ProfileView{
		UserView:   UserViewOf(u, baseURL),
		ResumeText: u.ResumeText,
	}
}

// profileImageURL derives a displayable image reference from the stored
// photo value.
//
// Base64-encoded JPEG bytes always start "/9j/" and PNG bytes "iVBOR", so
// those become self-contained data URIs. Any other non-empty value is
// treated as a filename under the static upload host. Empty means the
// account has no photo and gets the placeholder.
func profileImageURL(photo, baseURL string) string {
	switch {
	case photo == "":
		return defaultAvatarPath
	case strings.HasPrefix(photo, "/9j/"):
		return "data:image/jpeg;base64," + photo
	case strings.HasPrefix(photo, "iVBOR"):
		return "data:image/png;base64," + photo
	default:
		return baseURL + "/uploads/" + photo
	}
}
