package scheduling

import (
	"context"
	"time"
)

// EventCountFilter narrows an event count query. Zero values are skipped.
type EventCountFilter struct {
	CompanyID   int64
	AuxiliaryID int64
	Type        string
	StartDate   time.Time
	EndDate     time.Time
	IsBilled    *bool
}

// Repository is the planning-store surface the scheduling service drives.
type Repository interface {
	UnassignAuxiliaryFromEventsAfter(ctx context.Context, companyID, auxiliaryID int64, after time.Time) (int64, error)
	DeleteRepetitionsForAuxiliary(ctx context.Context, companyID, auxiliaryID int64) (int64, error)
	DeleteEventsExceptInterventionsAfter(ctx context.Context, companyID, auxiliaryID int64, after time.Time) (int64, error)
	TruncateAbsencesAt(ctx context.Context, companyID, auxiliaryID int64, endDate time.Time) (int64, error)
	CountEvents(ctx context.Context, filter EventCountFilter) (int64, error)
}
