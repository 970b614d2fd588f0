package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/talenthub/internal/model"
	"github.com/sakif/talenthub/internal/repository"
)

// DashboardListLimit caps the user list on the admin dashboard.
const DashboardListLimit = 100

// AdminService serves the admin-only operations: aggregate statistics,
// user lookup without secrets, and account deletion.
type AdminService struct {
	users   repository.UserRepository
	baseURL string
	logger  *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(users repository.UserRepository, baseURL string, logger *slog.Logger) *AdminService {
	return &AdminService{
		users:   users,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Dashboard aggregates account counts and the most recent users.
type Dashboard struct {
	TotalUsers      int              `json:"totalUsers"`
	ResumesUploaded int              `json:"resumesUploaded"`
	Users           []model.UserView `json:"users"`
}

// GetDashboard returns aggregate counts plus a user list, newest first.
//
// ResumesUploaded comes from the cached column (a single COUNT in the
// store); the per-user views in the list recompute the flag from raw fields
// like every other read path.
func (s *AdminService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: counting users: %w", err)
	}

	uploaded, err := s.users.CountResumeUploaded(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: counting uploads: %w", err)
	}

	users, err := s.users.List(ctx, repository.ListOptions{Limit: DashboardListLimit})
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing users: %w", err)
	}

	views := make([]model.UserView, 0, len(users))
	for i := range users {
		views = append(views, UserViewOf(&users[i], s.baseURL))
	}

	return &Dashboard{
		TotalUsers:      total,
		ResumesUploaded: uploaded,
		Users:           views,
	}, nil
}

// GetUser returns any account's non-secret fields by ID.
func (s *AdminService) GetUser(ctx context.Context, id string) (*model.ProfileView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := ProfileViewOf(user, s.baseURL)
	return &view, nil
}

// DeleteUser removes an account. Deletion is the only way a record leaves
// the store, and only this admin-gated path can trigger it.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted by admin", slog.String("userID", id))

	return nil
}
