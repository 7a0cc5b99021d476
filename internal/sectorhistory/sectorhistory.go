package sectorhistory

import (
	"context"
	"time"
)

// History is one temporal assignment of an auxiliary to a sector.
type History struct {
	ID          int64      `json:"id"`
	CompanyID   int64      `json:"company_id"`
	AuxiliaryID int64      `json:"auxiliary_id"`
	SectorID    int64      `json:"sector_id"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// Repository is the persistence surface for sector histories.
type Repository interface {
	Create(ctx context.Context, h *History) error
	FindOpen(ctx context.Context, companyID, auxiliaryID int64) (*History, error)
	UpdateStartDate(ctx context.Context, historyID int64, startDate time.Time) error
	CloseAt(ctx context.Context, historyID int64, endDate time.Time) error
	Delete(ctx context.Context, historyID int64) error
	ClearReferent(ctx context.Context, companyID, auxiliaryID int64) error
}
