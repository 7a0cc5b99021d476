package contract

import (
	"time"

	"github.com/frahmantamala/care-management/internal"
	"github.com/frahmantamala/care-management/internal/core/common/dates"
)

// Contract is an employee's employment agreement with a company, made of an
// ordered chain of versions. The contract is the unit of consistency: every
// version mutation rewrites the whole version array in one store write.
type Contract struct {
	ID                  string     `json:"id"`
	CompanyID           int64      `json:"company_id"`
	UserID              int64      `json:"user_id"`
	CustomerID          *int64     `json:"customer_id,omitempty"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	EndReason           *string    `json:"end_reason,omitempty"`
	EndNotificationDate *time.Time `json:"end_notification_date,omitempty"`
	OtherMisc           *string    `json:"other_misc,omitempty"`
	Versions            []Version  `json:"versions"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Version is one slice of a contract's terms: pay rate, weekly hours and a
// validity window. Only the last version may be open (no end date).
type Version struct {
	ID                string     `json:"_id"`
	StartDate         time.Time  `json:"startDate"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	WeeklyHours       float64    `json:"weeklyHours,omitempty"`
	GrossHourlyRate   float64    `json:"grossHourlyRate"`
	Signature         *Signature `json:"signature,omitempty"`
	AuxiliaryDoc      *Document  `json:"auxiliaryDoc,omitempty"`
	AuxiliaryArchives []Document `json:"auxiliaryArchives,omitempty"`
}

type Signature struct {
	EversignID string   `json:"eversignId,omitempty"`
	SignedBy   SignedBy `json:"signedBy,omitempty"`
}

type SignedBy struct {
	Auxiliary bool `json:"auxiliary"`
	Other     bool `json:"other"`
}

type Document struct {
	DriveID string `json:"driveId"`
	Link    string `json:"link,omitempty"`
}

// IsEnded reports whether the contract-level end date is set.
func (c *Contract) IsEnded() bool {
	return c.EndDate != nil
}

// LastVersion returns the final version of the chain, or nil when empty.
func (c *Contract) LastVersion() *Version {
	if len(c.Versions) == 0 {
		return nil
	}
	return &c.Versions[len(c.Versions)-1]
}

// VersionIndex locates a version by id, -1 when absent.
func (c *Contract) VersionIndex(versionID string) int {
	for i := range c.Versions {
		if c.Versions[i].ID == versionID {
			return i
		}
	}
	return -1
}

// AssertVersionOrder verifies the chronological chain: strictly increasing
// start dates, every non-last version closed, and each end date falling
// before its successor's start. Checked at every mutating boundary.
func (c *Contract) AssertVersionOrder() error {
	for i := range c.Versions {
		v := &c.Versions[i]
		last := i == len(c.Versions)-1

		if !last {
			next := &c.Versions[i+1]
			if !v.StartDate.Before(next.StartDate) {
				return internal.NewConflictError("version start dates out of order", internal.ErrCodeVersionChainBroken)
			}
			if v.EndDate == nil {
				return internal.NewConflictError("non-last version has no end date", internal.ErrCodeVersionChainBroken)
			}
			if !v.EndDate.Before(next.StartDate) {
				return internal.NewConflictError("version end date overlaps successor", internal.ErrCodeVersionChainBroken)
			}
		}
		if v.EndDate != nil && v.EndDate.Before(v.StartDate) {
			return internal.NewConflictError("version end date before its start date", internal.ErrCodeVersionChainBroken)
		}
	}
	return nil
}

// AssertEditionKeepsOrder projects an edit of the version at index, including
// the predecessor end-date move a start-date change triggers, and verifies the
// resulting chain is still chronologically ordered.
func (c *Contract) AssertEditionKeepsOrder(edited Version, index int) error {
	projected := *c
	projected.Versions = make([]Version, len(c.Versions))
	copy(projected.Versions, c.Versions)
	projected.Versions[index] = edited

	if !edited.StartDate.Equal(c.Versions[index].StartDate) {
		if index == 0 {
			projected.StartDate = edited.StartDate
		} else {
			end := dates.PreviousDayEnd(edited.StartDate)
			projected.Versions[index-1].EndDate = &end
		}
	}
	return projected.AssertVersionOrder()
}
