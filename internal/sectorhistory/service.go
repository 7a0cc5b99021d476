package sectorhistory

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/care-management/internal"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateHistoryOnContractCreation opens a new history entry effective from
// the contract's start date.
func (s *Service) CreateHistoryOnContractCreation(ctx context.Context, companyID, auxiliaryID, sectorID int64, startDate time.Time) error {
	return s.repo.Create(ctx, &History{
		CompanyID:   companyID,
		AuxiliaryID: auxiliaryID,
		SectorID:    sectorID,
		StartDate:   startDate,
	})
}

// UpdateHistoryOnContractUpdate moves the open entry's start date when the
// contract's inception date changes. A missing open entry is not an error:
// the auxiliary may have had no sector at creation time.
func (s *Service) UpdateHistoryOnContractUpdate(ctx context.Context, companyID, auxiliaryID int64, newStartDate time.Time) error {
	h, err := s.repo.FindOpen(ctx, companyID, auxiliaryID)
	if err != nil {
		return err
	}
	if h == nil {
		s.logger.Info("no open sector history to update",
			"company_id", companyID, "auxiliary_id", auxiliaryID)
		return nil
	}
	return s.repo.UpdateStartDate(ctx, h.ID, newStartDate)
}

// UpdateHistoryOnContractDeletion retires the entry opened for a contract
// that is being erased entirely.
func (s *Service) UpdateHistoryOnContractDeletion(ctx context.Context, companyID, auxiliaryID int64) error {
	h, err := s.repo.FindOpen(ctx, companyID, auxiliaryID)
	if err != nil {
		return err
	}
	if h == nil {
		return nil
	}
	return s.repo.Delete(ctx, h.ID)
}

// UpdateEndDate closes the auxiliary's open history entry as of the given
// date, typically the contract end date.
func (s *Service) UpdateEndDate(ctx context.Context, companyID, auxiliaryID int64, endDate time.Time) error {
	h, err := s.repo.FindOpen(ctx, companyID, auxiliaryID)
	if err != nil {
		return err
	}
	if h == nil {
		return nil
	}
	if endDate.Before(h.StartDate) {
		return internal.NewConflictError("sector history end date before its start date", internal.ErrCodeEndBeforeVersionStart)
	}
	return s.repo.CloseAt(ctx, h.ID, endDate)
}

// UnassignReferentOnContractEnd clears the planning-referent link for every
// customer the auxiliary was referent of.
func (s *Service) UnassignReferentOnContractEnd(ctx context.Context, companyID, auxiliaryID int64) error {
	return s.repo.ClearReferent(ctx, companyID, auxiliaryID)
}
