package user

import "time"

// CurrentUserDTO is the /users/me projection: the user plus the derived
// readiness information the front office needs before opening a contract.
type CurrentUserDTO struct {
	ID                   int64      `json:"id"`
	Email                string     `json:"email"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	Phone                *string    `json:"phone,omitempty"`
	SectorID             *int64     `json:"sector_id,omitempty"`
	InactivityDate       *time.Time `json:"inactivity_date,omitempty"`
	ContractIDs          []string   `json:"contract_ids"`
	MissingMandatoryInfo []string   `json:"missing_mandatory_info"`
	Scope                []string   `json:"scope"`
}
