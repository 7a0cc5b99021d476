package contract

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/care-management/internal"
	"github.com/frahmantamala/care-management/internal/core/common/dates"
	esignmodel "github.com/frahmantamala/care-management/internal/core/datamodel/esign"
	"github.com/frahmantamala/care-management/internal/core/events"
	"github.com/frahmantamala/care-management/internal/user"

	"github.com/google/uuid"
)

// Repository is the contract store. The whole version array travels with the
// row, so a single Update call is the atomicity boundary.
type Repository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, companyID int64, id string) (*Contract, error)
	ListByUser(ctx context.Context, companyID, userID int64) ([]Contract, error)
	ListByCompany(ctx context.Context, companyID int64) ([]Contract, error)
	Update(ctx context.Context, c *Contract) error
	Delete(ctx context.Context, companyID int64, id string) error
	ApplyVersionEdition(ctx context.Context, companyID int64, contractID string, edition VersionEdition) error
	ListByEversignID(ctx context.Context, eversignID string) ([]Contract, error)
}

// UserService is the slice of the user domain the contract engine drives.
type UserService interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	PushContract(ctx context.Context, userID int64, contractID string) error
	PullContract(ctx context.Context, userID int64, contractID string) error
	EnsureAuxiliaryRole(ctx context.Context, userID int64) error
	RefreshInactivityDate(ctx context.Context, userID int64, contractEndDate time.Time) error
}

// SchedulingService applies planning consequences of lifecycle changes.
type SchedulingService interface {
	UnassignInterventionsOnContractEnd(ctx context.Context, companyID, auxiliaryID int64, contractEndDate time.Time) error
	RemoveRepetitionsOnContractEnd(ctx context.Context, companyID, auxiliaryID int64) error
	RemoveEventsExceptInterventionsOnContractEnd(ctx context.Context, companyID, auxiliaryID int64, contractEndDate time.Time) error
	UpdateAbsencesOnContractEnd(ctx context.Context, companyID, auxiliaryID int64, contractEndDate time.Time) error
	CountInterventionsBetween(ctx context.Context, companyID, auxiliaryID int64, start, end time.Time) (int64, error)
	CountBilledEventsBetween(ctx context.Context, companyID, auxiliaryID int64, start, end time.Time) (int64, error)
}

// SectorHistoryService keeps sector assignment history in step with the
// contract chain.
type SectorHistoryService interface {
	CreateHistoryOnContractCreation(ctx context.Context, companyID, auxiliaryID, sectorID int64, startDate time.Time) error
	UpdateHistoryOnContractUpdate(ctx context.Context, companyID, auxiliaryID int64, newStartDate time.Time) error
	UpdateHistoryOnContractDeletion(ctx context.Context, companyID, auxiliaryID int64) error
	UpdateEndDate(ctx context.Context, companyID, auxiliaryID int64, endDate time.Time) error
	UnassignReferentOnContractEnd(ctx context.Context, companyID, auxiliaryID int64) error
}

// SignatureClient issues signature requests with the e-signature provider.
type SignatureClient interface {
	GenerateSignatureRequest(ctx context.Context, req esignmodel.SignatureRequest) (string, error)
}

// StorageClient schedules drive file deletions, fire-and-forget.
type StorageClient interface {
	ScheduleDelete(driveID string)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo          Repository
	users         UserService
	scheduling    SchedulingService
	sectorHistory SectorHistoryService
	esign         SignatureClient
	storage       StorageClient
	eventBus      EventPublisher
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(
	repo Repository,
	users UserService,
	scheduling SchedulingService,
	sectorHistory SectorHistoryService,
	esign SignatureClient,
	storage StorageClient,
	eventBus EventPublisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:          repo,
		users:         users,
		scheduling:    scheduling,
		sectorHistory: sectorHistory,
		esign:         esign,
		storage:       storage,
		eventBus:      eventBus,
		logger:        logger,
		now:           time.Now,
	}
}

// bestEffort runs one cascade step. Step failures are logged and swallowed:
// the primary write is already committed and no compensating transaction
// exists, so a broken step must not stop the steps after it.
func (s *Service) bestEffort(step string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Error("cascade step failed", "step", step, "error", err)
	}
}

// CreateContract creates a contract with its first version after checking
// the employee is contractable: complete mandatory info, no open contract
// with this company, and a start date past any previously ended contract.
func (s *Service) CreateContract(ctx context.Context, dto CreateContractDTO, companyID int64) (*ContractDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, dto.UserID)
	if err != nil {
		return nil, err
	}

	if missing := u.MissingMandatoryInfo(); len(missing) > 0 {
		return nil, internal.NewConflictError("employee record incomplete for contract creation", internal.ErrCodeMissingMandatoryInfo).
			WithDetails(map[string]interface{}{"missing": missing})
	}

	existing, err := s.repo.ListByUser(ctx, companyID, dto.UserID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if !existing[i].IsEnded() {
			return nil, internal.NewConflictError("employee already has an open contract with this company", internal.ErrCodeContractAlreadyOpen)
		}
	}
	for i := range existing {
		if !dto.Version.StartDate.After(*existing[i].EndDate) {
			return nil, internal.NewConflictError("start date overlaps a previous contract", internal.ErrCodeContractOverlap)
		}
	}

	version := Version{
		ID:              uuid.NewString(),
		StartDate:       dto.Version.StartDate,
		WeeklyHours:     dto.Version.WeeklyHours,
		GrossHourlyRate: dto.Version.GrossHourlyRate,
		AuxiliaryDoc:    dto.Version.AuxiliaryDoc,
	}

	if dto.Version.Signature != nil {
		eversignID, err := s.requestSignature(ctx, u, dto.Version.Signature)
		if err != nil {
			return nil, err
		}
		version.Signature = &Signature{EversignID: eversignID}
	}

	c := &Contract{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		UserID:     dto.UserID,
		CustomerID: dto.CustomerID,
		StartDate:  dto.Version.StartDate,
		Versions:   []Version{version},
	}
	if err := c.AssertVersionOrder(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.bestEffort("push contract onto user", func() error {
		return s.users.PushContract(ctx, dto.UserID, c.ID)
	})
	s.bestEffort("ensure auxiliary role", func() error {
		return s.users.EnsureAuxiliaryRole(ctx, dto.UserID)
	})
	if u.HasSector() {
		s.bestEffort("open sector history", func() error {
			return s.sectorHistory.CreateHistoryOnContractCreation(ctx, companyID, dto.UserID, *u.SectorID, c.StartDate)
		})
	}

	s.publish(ctx, events.ContractCreated, map[string]interface{}{
		"contract_id": c.ID,
		"user_id":     c.UserID,
		"company_id":  c.CompanyID,
	})

	return s.enrich(c, u), nil
}

// EndContract sets the contract-level end fields, mirrors the end date onto
// the last version and then runs the termination cascade in fixed order.
func (s *Service) EndContract(ctx context.Context, contractID string, dto EndContractDTO, companyID int64) (*ContractDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}

	last := c.LastVersion()
	if last == nil {
		return nil, internal.ErrVersionNotFound
	}
	if dto.EndDate.Before(last.StartDate) && !dates.SameDay(dto.EndDate, last.StartDate) {
		return nil, internal.NewConflictError("end date is before the last version start date", internal.ErrCodeEndBeforeVersionStart)
	}

	endDate := dates.EndOfDay(dto.EndDate)
	c.EndDate = &endDate
	c.EndReason = &dto.EndReason
	c.EndNotificationDate = dto.EndNotificationDate
	c.OtherMisc = dto.OtherMisc
	last.EndDate = &endDate

	if err := c.AssertVersionOrder(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	// cascade order is fixed and sequential, no fan-out
	s.bestEffort("unassign interventions", func() error {
		return s.scheduling.UnassignInterventionsOnContractEnd(ctx, companyID, c.UserID, endDate)
	})
	s.bestEffort("remove repetitions", func() error {
		return s.scheduling.RemoveRepetitionsOnContractEnd(ctx, companyID, c.UserID)
	})
	s.bestEffort("remove non-intervention events", func() error {
		return s.scheduling.RemoveEventsExceptInterventionsOnContractEnd(ctx, companyID, c.UserID, endDate)
	})
	s.bestEffort("reconcile absences", func() error {
		return s.scheduling.UpdateAbsencesOnContractEnd(ctx, companyID, c.UserID, endDate)
	})
	s.bestEffort("unassign planning referent", func() error {
		return s.sectorHistory.UnassignReferentOnContractEnd(ctx, companyID, c.UserID)
	})
	s.bestEffort("refresh inactivity date", func() error {
		return s.users.RefreshInactivityDate(ctx, c.UserID, endDate)
	})
	s.bestEffort("close sector history", func() error {
		return s.sectorHistory.UpdateEndDate(ctx, companyID, c.UserID, endDate)
	})

	s.publish(ctx, events.ContractEnded, map[string]interface{}{
		"contract_id": c.ID,
		"user_id":     c.UserID,
		"company_id":  c.CompanyID,
		"end_date":    endDate,
	})

	return s.enrichLazy(ctx, c), nil
}

// CreateVersion appends a new open version. The previous last version is
// closed at the day before the new start, so no gap or overlap can appear.
func (s *Service) CreateVersion(ctx context.Context, contractID string, dto VersionDTO, companyID int64) (*Contract, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	if c.IsEnded() {
		return nil, internal.NewConflictError("cannot add a version to an ended contract", internal.ErrCodeVersionChainBroken)
	}

	version := Version{
		ID:              uuid.NewString(),
		StartDate:       dto.StartDate,
		WeeklyHours:     dto.WeeklyHours,
		GrossHourlyRate: dto.GrossHourlyRate,
		AuxiliaryDoc:    dto.AuxiliaryDoc,
	}

	if dto.Signature != nil {
		u, err := s.users.GetByID(ctx, c.UserID)
		if err != nil {
			return nil, err
		}
		eversignID, err := s.requestSignature(ctx, u, dto.Signature)
		if err != nil {
			return nil, err
		}
		version.Signature = &Signature{EversignID: eversignID}
	}

	if last := c.LastVersion(); last != nil {
		prevEnd := dates.PreviousDayEnd(dto.StartDate)
		last.EndDate = &prevEnd
	}
	c.Versions = append(c.Versions, version)

	if err := c.AssertVersionOrder(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, events.ContractVersionCreated, map[string]interface{}{
		"contract_id": c.ID,
		"version_id":  version.ID,
		"company_id":  c.CompanyID,
	})

	return c, nil
}

// CanUpdateVersion decides whether a version edit is permitted. Versions on
// ended contracts never are; a non-first version on an active contract always
// is; the first version only while no intervention predates the new start.
func (s *Service) CanUpdateVersion(ctx context.Context, c *Contract, newVersion Version, versionIndex int, companyID int64) (bool, error) {
	if c.IsEnded() {
		return false, nil
	}
	if versionIndex > 0 {
		return true, nil
	}

	count, err := s.scheduling.CountInterventionsBetween(ctx, companyID, c.UserID, time.Time{}, newVersion.StartDate)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// UpdateVersion edits a version through the two-phase edition plan. A first
// version start date change also moves the linked sector history before the
// document write lands.
func (s *Service) UpdateVersion(ctx context.Context, contractID, versionID string, dto UpdateVersionDTO, companyID int64) (*Contract, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}

	index := c.VersionIndex(versionID)
	if index < 0 {
		return nil, internal.ErrVersionNotFound
	}
	oldVersion := c.Versions[index]
	newVersion := mergeVersion(oldVersion, dto)

	allowed, err := s.CanUpdateVersion(ctx, c, newVersion, index, companyID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.NewForbiddenError("version update not permitted", internal.ErrCodeVersionLocked)
	}

	if err := c.AssertEditionKeepsOrder(newVersion, index); err != nil {
		return nil, err
	}

	if dto.Signature != nil {
		u, err := s.users.GetByID(ctx, c.UserID)
		if err != nil {
			return nil, err
		}
		eversignID, err := s.requestSignature(ctx, u, dto.Signature)
		if err != nil {
			return nil, err
		}
		newVersion.Signature = &Signature{EversignID: eversignID}
	}

	if index == 0 && !newVersion.StartDate.Equal(oldVersion.StartDate) {
		s.bestEffort("move sector history inception", func() error {
			return s.sectorHistory.UpdateHistoryOnContractUpdate(ctx, companyID, c.UserID, newVersion.StartDate)
		})
	}

	edition := FormatVersionEditionPayload(oldVersion, newVersion, index)
	if err := s.repo.ApplyVersionEdition(ctx, companyID, contractID, edition); err != nil {
		return nil, err
	}

	s.publish(ctx, events.ContractVersionUpdated, map[string]interface{}{
		"contract_id": contractID,
		"version_id":  versionID,
		"company_id":  companyID,
	})

	return s.repo.GetByID(ctx, companyID, contractID)
}

// DeleteVersion removes the last version. With siblings left the previous
// version reopens; deleting the sole version erases the contract entirely,
// provided no intervention history exists.
func (s *Service) DeleteVersion(ctx context.Context, contractID, versionID string, companyID int64) error {
	c, err := s.repo.GetByID(ctx, companyID, contractID)
	if err != nil {
		return err
	}
	if len(c.Versions) == 0 {
		return nil
	}

	index := c.VersionIndex(versionID)
	if index < 0 {
		return internal.ErrVersionNotFound
	}
	if index != len(c.Versions)-1 {
		return internal.NewForbiddenError("only the last version may be deleted", internal.ErrCodeVersionNotLast)
	}

	removed := c.Versions[index]

	if len(c.Versions) > 1 {
		c.Versions = c.Versions[:index]
		c.LastVersion().EndDate = nil
		if err := c.AssertVersionOrder(); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, c); err != nil {
			return err
		}
		s.publish(ctx, events.ContractVersionDeleted, map[string]interface{}{
			"contract_id": contractID,
			"version_id":  versionID,
			"company_id":  companyID,
		})
	} else {
		count, err := s.scheduling.CountInterventionsBetween(ctx, companyID, c.UserID, c.StartDate, s.now())
		if err != nil {
			return err
		}
		if count > 0 {
			return internal.NewForbiddenError("contract has scheduled interventions and cannot be erased", internal.ErrCodeContractHasEvents)
		}

		billed, err := s.scheduling.CountBilledEventsBetween(ctx, companyID, c.UserID, c.StartDate, s.now())
		if err != nil {
			return err
		}
		if billed > 0 {
			return internal.NewForbiddenError("contract has billed events and cannot be erased", internal.ErrCodeContractHasEvents)
		}

		if err := s.repo.Delete(ctx, companyID, contractID); err != nil {
			return err
		}
		s.bestEffort("pull contract from user", func() error {
			return s.users.PullContract(ctx, c.UserID, contractID)
		})
		s.bestEffort("retire sector history", func() error {
			return s.sectorHistory.UpdateHistoryOnContractDeletion(ctx, companyID, c.UserID)
		})
		s.publish(ctx, events.ContractDeleted, map[string]interface{}{
			"contract_id": contractID,
			"user_id":     c.UserID,
			"company_id":  companyID,
		})
	}

	if removed.AuxiliaryDoc != nil {
		s.storage.ScheduleDelete(removed.AuxiliaryDoc.DriveID)
	}

	return nil
}

// GetContract returns a single contract scoped to the caller's company.
func (s *Service) GetContract(ctx context.Context, companyID int64, contractID string) (*ContractDTO, error) {
	c, err := s.repo.GetByID(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	return s.enrichLazy(ctx, c), nil
}

// ContractInfo aggregates pay-relevant figures for a contract over the query
// window. The reference month for pro-rating is the month of the window start.
func (s *Service) ContractInfo(ctx context.Context, companyID int64, contractID string, query dates.DateRange) (ContractInfoDTO, error) {
	c, err := s.repo.GetByID(ctx, companyID, contractID)
	if err != nil {
		return ContractInfoDTO{}, err
	}

	monthStart := time.Date(query.Start.Year(), query.Start.Month(), 1, 0, 0, 0, 0, query.Start.Location())
	monthDays := dates.CountWorkedDays(monthStart, dates.EndOfMonth(query.Start))
	monthRatio := dates.MonthDayRatio{
		BusinessDays: monthDays.BusinessDays,
		Holidays:     monthDays.Holidays,
	}

	return GetContractInfo(c.Versions, query, monthRatio), nil
}

// ListContracts returns the company's contracts, optionally for one user.
func (s *Service) ListContracts(ctx context.Context, companyID int64, userID int64) ([]Contract, error) {
	if userID != 0 {
		return s.repo.ListByUser(ctx, companyID, userID)
	}
	return s.repo.ListByCompany(ctx, companyID)
}

// RecordSignature flips the signer flags on the version holding the given
// document hash. Driven by the provider's webhook.
func (s *Service) RecordSignature(ctx context.Context, eversignID string, signerIndex int) error {
	c, versionIdx, err := s.findByEversignID(ctx, eversignID)
	if err != nil {
		return err
	}

	signature := c.Versions[versionIdx].Signature
	if signerIndex == 0 {
		signature.SignedBy.Auxiliary = true
	} else {
		signature.SignedBy.Other = true
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}

	s.publish(ctx, events.SignatureCompleted, map[string]interface{}{
		"contract_id": c.ID,
		"version_id":  c.Versions[versionIdx].ID,
		"eversign_id": eversignID,
	})
	return nil
}

func (s *Service) requestSignature(ctx context.Context, u *user.User, params *SignatureParamsDTO) (string, error) {
	req := esignmodel.SignatureRequest{
		TemplateID:  params.TemplateID,
		Title:       params.Title,
		Fields:      params.Fields,
		RedirectURL: params.RedirectURL,
	}

	signerName := params.SignerName
	if signerName == "" {
		signerName = u.FirstName + " " + u.LastName
	}
	signerEmail := params.SignerEmail
	if signerEmail == "" {
		signerEmail = u.Email
	}
	req.Signers = append(req.Signers, esignmodel.Signer{ID: 1, Name: signerName, Email: signerEmail})
	if params.OtherEmail != "" {
		req.Signers = append(req.Signers, esignmodel.Signer{ID: 2, Name: params.OtherName, Email: params.OtherEmail})
	}

	return s.esign.GenerateSignatureRequest(ctx, req)
}

func (s *Service) findByEversignID(ctx context.Context, eversignID string) (*Contract, int, error) {
	contracts, err := s.repo.ListByEversignID(ctx, eversignID)
	if err != nil {
		return nil, 0, err
	}
	for i := range contracts {
		c := &contracts[i]
		for j := range c.Versions {
			if sig := c.Versions[j].Signature; sig != nil && sig.EversignID == eversignID {
				return c, j, nil
			}
		}
	}
	return nil, 0, internal.ErrVersionNotFound
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("failed to publish event", "event_type", eventType, "error", err)
	}
}

func (s *Service) enrich(c *Contract, u *user.User) *ContractDTO {
	dto := &ContractDTO{Contract: *c}
	if u != nil {
		dto.User = &ContractUserDTO{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			SectorID:  u.SectorID,
		}
	}
	return dto
}

func (s *Service) enrichLazy(ctx context.Context, c *Contract) *ContractDTO {
	u, err := s.users.GetByID(ctx, c.UserID)
	if err != nil {
		s.logger.Warn("could not populate contract user", "user_id", c.UserID, "error", err)
		return s.enrich(c, nil)
	}
	return s.enrich(c, u)
}

func mergeVersion(old Version, dto UpdateVersionDTO) Version {
	merged := old
	if dto.StartDate != nil {
		merged.StartDate = *dto.StartDate
	}
	if dto.WeeklyHours != nil {
		merged.WeeklyHours = *dto.WeeklyHours
	}
	if dto.GrossHourlyRate != nil {
		merged.GrossHourlyRate = *dto.GrossHourlyRate
	}
	if dto.Signature != nil {
		merged.Signature = &Signature{}
	} else {
		merged.Signature = nil
	}
	// The old document always moves to the archive list; the live slot holds
	// the payload's document only, nil when the payload carries none.
	merged.AuxiliaryDoc = dto.AuxiliaryDoc
	return merged
}
