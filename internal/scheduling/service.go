package scheduling

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/care-management/internal/core/datamodel/event"
)

// Service applies the planning consequences of contract lifecycle changes.
// Every operation is idempotent: re-running after a partial failure matches
// nothing or repeats a no-op write.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// UnassignInterventionsOnContractEnd detaches the auxiliary from every
// intervention scheduled after the contract end. The interventions themselves
// survive so the customer's planning keeps its slots.
func (s *Service) UnassignInterventionsOnContractEnd(ctx context.Context, companyID, auxiliaryID int64, contractEndDate time.Time) error {
	n, err := s.repo.UnassignAuxiliaryFromEventsAfter(ctx, companyID, auxiliaryID, contractEndDate)
	if err != nil {
		return err
	}
	s.logger.Info("unassigned auxiliary from future interventions",
		"auxiliary_id", auxiliaryID, "count", n)
	return nil
}

// RemoveRepetitionsOnContractEnd drops the auxiliary's recurring-event
// templates so no new occurrences get expanded past the contract end.
func (s *Service) RemoveRepetitionsOnContractEnd(ctx context.Context, companyID, auxiliaryID int64) error {
	n, err := s.repo.DeleteRepetitionsForAuxiliary(ctx, companyID, auxiliaryID)
	if err != nil {
		return err
	}
	s.logger.Info("removed auxiliary repetitions",
		"auxiliary_id", auxiliaryID, "count", n)
	return nil
}

// RemoveEventsExceptInterventionsOnContractEnd deletes internal hours,
// unavailabilities and similar auxiliary-only events after the end date.
func (s *Service) RemoveEventsExceptInterventionsOnContractEnd(ctx context.Context, companyID, auxiliaryID int64, contractEndDate time.Time) error {
	n, err := s.repo.DeleteEventsExceptInterventionsAfter(ctx, companyID, auxiliaryID, contractEndDate)
	if err != nil {
		return err
	}
	s.logger.Info("removed non-intervention events after contract end",
		"auxiliary_id", auxiliaryID, "count", n)
	return nil
}

// UpdateAbsencesOnContractEnd truncates absences extending past the contract
// end so none outlives the employment.
func (s *Service) UpdateAbsencesOnContractEnd(ctx context.Context, companyID, auxiliaryID int64, contractEndDate time.Time) error {
	n, err := s.repo.TruncateAbsencesAt(ctx, companyID, auxiliaryID, contractEndDate)
	if err != nil {
		return err
	}
	s.logger.Info("truncated absences at contract end",
		"auxiliary_id", auxiliaryID, "count", n)
	return nil
}

// CountInterventionsBetween reports how many interventions the auxiliary has
// in the window. Consulted before first-version edits and contract deletion.
func (s *Service) CountInterventionsBetween(ctx context.Context, companyID, auxiliaryID int64, start, end time.Time) (int64, error) {
	return s.repo.CountEvents(ctx, EventCountFilter{
		CompanyID:   companyID,
		AuxiliaryID: auxiliaryID,
		Type:        event.TypeIntervention,
		StartDate:   start,
		EndDate:     end,
	})
}

// CountBilledEventsBetween reports billed events in the window, which block
// erasing a contract entirely.
func (s *Service) CountBilledEventsBetween(ctx context.Context, companyID, auxiliaryID int64, start, end time.Time) (int64, error) {
	billed := true
	return s.repo.CountEvents(ctx, EventCountFilter{
		CompanyID:   companyID,
		AuxiliaryID: auxiliaryID,
		StartDate:   start,
		EndDate:     end,
		IsBilled:    &billed,
	})
}
