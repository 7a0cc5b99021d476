package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/frahmantamala/care-management/internal"
	eventmodel "github.com/frahmantamala/care-management/internal/core/datamodel/event"
	"github.com/frahmantamala/care-management/internal/scheduling"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// SchedulingRepository uses gorm for the cascade mutations and sqlx for the
// count queries that feed preconditions.
type SchedulingRepository struct {
	db  *gorm.DB
	sdb *sqlx.DB
}

func NewSchedulingRepository(db *gorm.DB, sdb *sqlx.DB) *SchedulingRepository {
	return &SchedulingRepository{db: db, sdb: sdb}
}

func (r *SchedulingRepository) UnassignAuxiliaryFromEventsAfter(ctx context.Context, companyID, auxiliaryID int64, after time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&eventmodel.Event{}).
		Where("company_id = ? AND auxiliary_id = ? AND type = ? AND start_date > ?",
			companyID, auxiliaryID, eventmodel.TypeIntervention, after).
		Updates(map[string]interface{}{"auxiliary_id": nil, "sector_id": nil})
	if result.Error != nil {
		return 0, internal.NewInternalError("failed to unassign interventions", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SchedulingRepository) DeleteRepetitionsForAuxiliary(ctx context.Context, companyID, auxiliaryID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND auxiliary_id = ?", companyID, auxiliaryID).
		Delete(&eventmodel.Repetition{})
	if result.Error != nil {
		return 0, internal.NewInternalError("failed to delete repetitions", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SchedulingRepository) DeleteEventsExceptInterventionsAfter(ctx context.Context, companyID, auxiliaryID int64, after time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND auxiliary_id = ? AND type NOT IN ? AND start_date > ?",
			companyID, auxiliaryID,
			[]string{eventmodel.TypeIntervention, eventmodel.TypeAbsence}, after).
		Delete(&eventmodel.Event{})
	if result.Error != nil {
		return 0, internal.NewInternalError("failed to delete non-intervention events", result.Error)
	}
	return result.RowsAffected, nil
}

// TruncateAbsencesAt clips absences straddling the end date and removes the
// ones starting entirely after it.
func (r *SchedulingRepository) TruncateAbsencesAt(ctx context.Context, companyID, auxiliaryID int64, endDate time.Time) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clipped := tx.Model(&eventmodel.Event{}).
			Where("company_id = ? AND auxiliary_id = ? AND type = ? AND start_date <= ? AND end_date > ?",
				companyID, auxiliaryID, eventmodel.TypeAbsence, endDate, endDate).
			Update("end_date", endDate)
		if clipped.Error != nil {
			return clipped.Error
		}
		removed := tx.
			Where("company_id = ? AND auxiliary_id = ? AND type = ? AND start_date > ?",
				companyID, auxiliaryID, eventmodel.TypeAbsence, endDate).
			Delete(&eventmodel.Event{})
		if removed.Error != nil {
			return removed.Error
		}
		affected = clipped.RowsAffected + removed.RowsAffected
		return nil
	})
	if err != nil {
		return 0, internal.NewInternalError("failed to reconcile absences", err)
	}
	return affected, nil
}

func (r *SchedulingRepository) CountEvents(ctx context.Context, filter scheduling.EventCountFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM events WHERE company_id = $1 AND auxiliary_id = $2`
	args := []interface{}{filter.CompanyID, filter.AuxiliaryID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		query += ` AND start_date >= $` + strconv.Itoa(len(args))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		query += ` AND start_date < $` + strconv.Itoa(len(args))
	}
	if filter.IsBilled != nil {
		args = append(args, *filter.IsBilled)
		query += ` AND is_billed = $` + strconv.Itoa(len(args))
	}

	var count int64
	if err := r.sdb.GetContext(ctx, &count, query, args...); err != nil {
		return 0, internal.NewInternalError("failed to count events", err)
	}
	return count, nil
}

