package contract

import (
	"time"

	"github.com/frahmantamala/care-management/internal"
)

// SignatureParamsDTO carries the e-signature request parameters attached to
// a version at creation or re-signing time.
type SignatureParamsDTO struct {
	TemplateID  string            `json:"template_id"`
	Title       string            `json:"title"`
	SignerName  string            `json:"signer_name"`
	SignerEmail string            `json:"signer_email"`
	OtherName   string            `json:"other_name,omitempty"`
	OtherEmail  string            `json:"other_email,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	RedirectURL string            `json:"redirect_url,omitempty"`
}

type VersionDTO struct {
	StartDate       time.Time           `json:"start_date"`
	WeeklyHours     float64             `json:"weekly_hours"`
	GrossHourlyRate float64             `json:"gross_hourly_rate"`
	Signature       *SignatureParamsDTO `json:"signature,omitempty"`
	AuxiliaryDoc    *Document           `json:"auxiliary_doc,omitempty"`
}

func (d *VersionDTO) Validate() error {
	if d.StartDate.IsZero() {
		return internal.NewValidationFieldError("start_date", "start date is required", internal.ErrCodeInvalidDate)
	}
	if d.WeeklyHours <= 0 {
		return internal.NewValidationFieldError("weekly_hours", "weekly hours must be positive", internal.ErrCodeInvalidHours)
	}
	if d.GrossHourlyRate <= 0 {
		return internal.NewValidationFieldError("gross_hourly_rate", "gross hourly rate must be positive", internal.ErrCodeInvalidRate)
	}
	if d.Signature != nil {
		if d.Signature.Title == "" {
			return internal.NewValidationFieldError("signature.title", "signature title is required", internal.ErrCodeValidationFailed)
		}
		if d.Signature.SignerEmail == "" {
			return internal.NewValidationFieldError("signature.signer_email", "signer email is required", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

type CreateContractDTO struct {
	UserID     int64      `json:"user_id"`
	CustomerID *int64     `json:"customer_id,omitempty"`
	Version    VersionDTO `json:"version"`
}

func (d *CreateContractDTO) Validate() error {
	if d.UserID == 0 {
		return internal.NewValidationFieldError("user_id", "user id is required", internal.ErrCodeValidationFailed)
	}
	return d.Version.Validate()
}

type EndContractDTO struct {
	EndDate             time.Time  `json:"end_date"`
	EndReason           string     `json:"end_reason"`
	EndNotificationDate *time.Time `json:"end_notification_date,omitempty"`
	OtherMisc           *string    `json:"other_misc,omitempty"`
}

func (d *EndContractDTO) Validate() error {
	if d.EndDate.IsZero() {
		return internal.NewValidationFieldError("end_date", "end date is required", internal.ErrCodeInvalidDate)
	}
	if d.EndReason == "" {
		return internal.NewValidationFieldError("end_reason", "end reason is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateVersionDTO holds the editable version fields. Pointer fields
// distinguish "leave unchanged" from an explicit new value; a nil Signature
// clears any recorded signature state.
type UpdateVersionDTO struct {
	StartDate       *time.Time          `json:"start_date,omitempty"`
	WeeklyHours     *float64            `json:"weekly_hours,omitempty"`
	GrossHourlyRate *float64            `json:"gross_hourly_rate,omitempty"`
	Signature       *SignatureParamsDTO `json:"signature,omitempty"`
	AuxiliaryDoc    *Document           `json:"auxiliary_doc,omitempty"`
}

func (d *UpdateVersionDTO) Validate() error {
	if d.StartDate != nil && d.StartDate.IsZero() {
		return internal.NewValidationFieldError("start_date", "start date must be a valid date", internal.ErrCodeInvalidDate)
	}
	if d.WeeklyHours != nil && *d.WeeklyHours <= 0 {
		return internal.NewValidationFieldError("weekly_hours", "weekly hours must be positive", internal.ErrCodeInvalidHours)
	}
	if d.GrossHourlyRate != nil && *d.GrossHourlyRate <= 0 {
		return internal.NewValidationFieldError("gross_hourly_rate", "gross hourly rate must be positive", internal.ErrCodeInvalidRate)
	}
	return nil
}

// ContractDTO is the outbound projection, enriched with the employee data
// front offices need to render the contract without a second round trip.
type ContractDTO struct {
	Contract
	User *ContractUserDTO `json:"user,omitempty"`
}

type ContractUserDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	SectorID  *int64 `json:"sector_id,omitempty"`
}

// ContractInfoDTO is the payroll-facing aggregate of getContractInfo.
type ContractInfoDTO struct {
	ContractHours   float64 `json:"contract_hours"`
	HolidaysHours   float64 `json:"holidays_hours"`
	WorkedDaysRatio float64 `json:"worked_days_ratio"`
}
