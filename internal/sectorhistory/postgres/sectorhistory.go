package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/care-management/internal"
	customermodel "github.com/frahmantamala/care-management/internal/core/datamodel/customer"
	historymodel "github.com/frahmantamala/care-management/internal/core/datamodel/sectorhistory"
	"github.com/frahmantamala/care-management/internal/sectorhistory"

	"gorm.io/gorm"
)

type SectorHistoryRepository struct {
	db *gorm.DB
}

func NewSectorHistoryRepository(db *gorm.DB) *SectorHistoryRepository {
	return &SectorHistoryRepository{db: db}
}

func (r *SectorHistoryRepository) Create(ctx context.Context, h *sectorhistory.History) error {
	m := historymodel.SectorHistory{
		CompanyID:   h.CompanyID,
		AuxiliaryID: h.AuxiliaryID,
		SectorID:    h.SectorID,
		StartDate:   h.StartDate,
		EndDate:     h.EndDate,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return internal.NewInternalError("failed to create sector history", err)
	}
	h.ID = m.ID
	return nil
}

// FindOpen returns the auxiliary's open entry, or nil when none exists.
func (r *SectorHistoryRepository) FindOpen(ctx context.Context, companyID, auxiliaryID int64) (*sectorhistory.History, error) {
	var m historymodel.SectorHistory
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND auxiliary_id = ? AND end_date IS NULL", companyID, auxiliaryID).
		Order("start_date DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, internal.NewInternalError("failed to fetch sector history", err)
	}
	return &sectorhistory.History{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		AuxiliaryID: m.AuxiliaryID,
		SectorID:    m.SectorID,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
	}, nil
}

func (r *SectorHistoryRepository) UpdateStartDate(ctx context.Context, historyID int64, startDate time.Time) error {
	result := r.db.WithContext(ctx).Model(&historymodel.SectorHistory{}).
		Where("id = ?", historyID).
		Update("start_date", startDate)
	if result.Error != nil {
		return internal.NewInternalError("failed to update sector history start date", result.Error)
	}
	return nil
}

func (r *SectorHistoryRepository) CloseAt(ctx context.Context, historyID int64, endDate time.Time) error {
	result := r.db.WithContext(ctx).Model(&historymodel.SectorHistory{}).
		Where("id = ?", historyID).
		Update("end_date", endDate)
	if result.Error != nil {
		return internal.NewInternalError("failed to close sector history", result.Error)
	}
	return nil
}

func (r *SectorHistoryRepository) Delete(ctx context.Context, historyID int64) error {
	result := r.db.WithContext(ctx).Delete(&historymodel.SectorHistory{}, "id = ?", historyID)
	if result.Error != nil {
		return internal.NewInternalError("failed to delete sector history", result.Error)
	}
	return nil
}

// ClearReferent detaches the auxiliary from every customer it was planning
// referent for. Idempotent: re-running matches zero rows.
func (r *SectorHistoryRepository) ClearReferent(ctx context.Context, companyID, auxiliaryID int64) error {
	result := r.db.WithContext(ctx).Model(&customermodel.Customer{}).
		Where("company_id = ? AND referent_id = ?", companyID, auxiliaryID).
		Update("referent_id", nil)
	if result.Error != nil {
		return internal.NewInternalError("failed to clear planning referent", result.Error)
	}
	return nil
}
