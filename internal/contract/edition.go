package contract

import (
	"time"

	"github.com/frahmantamala/care-management/internal/core/common/dates"
)

// VersionEdition is the two-phase write plan produced by
// FormatVersionEditionPayload: unset keys are applied in a first store write,
// set and push keys in a second. Splitting the phases avoids a set and an
// unset colliding on the same nested path within one document update.
type VersionEdition struct {
	VersionID string

	Unset VersionUnset
	Set   VersionSet

	// ArchivePush supersedes the previous live document instead of
	// overwriting it.
	ArchivePush *Document

	// ContractStartDate mirrors a first-version start date change onto the
	// contract itself.
	ContractStartDate *time.Time

	// PreviousEndDate re-derives the predecessor's end date when a later
	// version's start date moves.
	PreviousEndDate *time.Time
}

type VersionUnset struct {
	Signature    bool
	SignedBy     bool
	AuxiliaryDoc bool
}

type VersionSet struct {
	StartDate       *time.Time
	WeeklyHours     *float64
	GrossHourlyRate *float64
	Signature       *Signature
	AuxiliaryDoc    *Document
}

// FormatVersionEditionPayload computes the edition plan from the old and new
// version values. Pure transformation: no I/O, no branching on company or
// permissions, only value differences drive the output.
func FormatVersionEditionPayload(oldVersion, newVersion Version, versionIndex int) VersionEdition {
	edition := VersionEdition{VersionID: oldVersion.ID}

	if newVersion.Signature != nil {
		// a re-signed version starts signature collection over
		edition.Set.Signature = &Signature{EversignID: newVersion.Signature.EversignID}
		edition.Unset.SignedBy = true
	} else {
		edition.Unset.Signature = true
	}

	if oldVersion.AuxiliaryDoc != nil {
		doc := *oldVersion.AuxiliaryDoc
		edition.ArchivePush = &doc
		edition.Unset.AuxiliaryDoc = true
	}
	if newVersion.AuxiliaryDoc != nil {
		doc := *newVersion.AuxiliaryDoc
		edition.Set.AuxiliaryDoc = &doc
	}

	if !newVersion.StartDate.Equal(oldVersion.StartDate) {
		start := newVersion.StartDate
		edition.Set.StartDate = &start
		if versionIndex == 0 {
			edition.ContractStartDate = &start
		} else {
			prevEnd := dates.PreviousDayEnd(start)
			edition.PreviousEndDate = &prevEnd
		}
	}

	if newVersion.WeeklyHours != oldVersion.WeeklyHours {
		hours := newVersion.WeeklyHours
		edition.Set.WeeklyHours = &hours
	}
	if newVersion.GrossHourlyRate != oldVersion.GrossHourlyRate {
		rate := newVersion.GrossHourlyRate
		edition.Set.GrossHourlyRate = &rate
	}

	return edition
}
