package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/care-management/internal/core/common/dates"
)

// Repository is the persistence surface the user service needs. Implemented
// by the gorm adapter in the postgres subpackage.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	PushContractID(ctx context.Context, userID int64, contractID string) error
	PullContractID(ctx context.Context, userID int64, contractID string) error
	SetInactivityDate(ctx context.Context, userID int64, date *time.Time) error
	AssignClientRole(ctx context.Context, userID int64, roleName string) error
	CountOpenContracts(ctx context.Context, userID int64) (int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// PushContract records a newly created contract on the user and clears any
// inactivity marker since the user is employed again.
func (s *Service) PushContract(ctx context.Context, userID int64, contractID string) error {
	if err := s.repo.PushContractID(ctx, userID, contractID); err != nil {
		return err
	}
	return s.repo.SetInactivityDate(ctx, userID, nil)
}

// PullContract removes a deleted contract from the user's contract list.
func (s *Service) PullContract(ctx context.Context, userID int64, contractID string) error {
	return s.repo.PullContractID(ctx, userID, contractID)
}

// EnsureAuxiliaryRole assigns the canonical auxiliary role on the client
// interface unless the user is already tracked through another interface.
func (s *Service) EnsureAuxiliaryRole(ctx context.Context, userID int64) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.VendorRoleID != nil || u.HoldingRoleID != nil || u.ClientRoleID != nil {
		return nil
	}
	return s.repo.AssignClientRole(ctx, userID, RoleAuxiliary)
}

// RefreshInactivityDate recomputes the user's inactivity marker after a
// contract ends. The date is only set when no contract remains open; it lands
// at the end of the month following the contract end.
func (s *Service) RefreshInactivityDate(ctx context.Context, userID int64, contractEndDate time.Time) error {
	open, err := s.repo.CountOpenContracts(ctx, userID)
	if err != nil {
		return err
	}
	if open > 0 {
		return nil
	}
	inactivity := dates.InactivityDate(contractEndDate)
	s.logger.Info("setting user inactivity date",
		"user_id", userID,
		"inactivity_date", inactivity.Format(time.RFC3339))
	return s.repo.SetInactivityDate(ctx, userID, &inactivity)
}
