package user

import (
	"time"

	"github.com/frahmantamala/care-management/internal"
)

// canonical role carried by every employee under an active contract
const RoleAuxiliary = "auxiliary"

// mandatory identity fields checked before a contract may be created
const (
	MandatoryIdentity  = "identity"
	MandatoryPhone     = "phone"
	MandatoryBirthDate = "birth_date"
	MandatorySSN       = "ssn"
	MandatoryAddress   = "address"
)

// User is the domain projection of an employee or platform user.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Phone          *string    `json:"phone,omitempty"`
	SSN            *string    `json:"ssn,omitempty"`
	Address        *string    `json:"address,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	SectorID       *int64     `json:"sector_id,omitempty"`
	ClientRoleID   *int64     `json:"client_role_id,omitempty"`
	VendorRoleID   *int64     `json:"vendor_role_id,omitempty"`
	HoldingRoleID  *int64     `json:"holding_role_id,omitempty"`
	InactivityDate *time.Time `json:"inactivity_date,omitempty"`
	ContractIDs    []string   `json:"contract_ids"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasSector reports whether the user is assigned to a sector.
func (u *User) HasSector() bool {
	return u.SectorID != nil
}

// MissingMandatoryInfo lists the identity fields still required before a
// contract can be drawn up for this user. Empty means ready.
func (u *User) MissingMandatoryInfo() []string {
	var missing []string
	if u.FirstName == "" || u.LastName == "" {
		missing = append(missing, MandatoryIdentity)
	}
	if u.Phone == nil || *u.Phone == "" {
		missing = append(missing, MandatoryPhone)
	}
	if u.BirthDate == nil {
		missing = append(missing, MandatoryBirthDate)
	}
	if u.SSN == nil || *u.SSN == "" {
		missing = append(missing, MandatorySSN)
	}
	if u.Address == nil || *u.Address == "" {
		missing = append(missing, MandatoryAddress)
	}
	return missing
}

var ErrUserNotFound = internal.ErrUserNotFound
