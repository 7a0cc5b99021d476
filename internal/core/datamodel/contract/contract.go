package contract

import "time"

// Contract is the persistence model. Versions are stored as an ordered JSON
// array on the row so that version mutations stay single-row atomic, matching
// the document-per-contract consistency unit of the domain.
type Contract struct {
	ID                  string     `gorm:"primaryKey"`
	CompanyID           int64      `gorm:"column:company_id;not null;index"`
	UserID              int64      `gorm:"column:user_id;not null;index"`
	CustomerID          *int64     `gorm:"column:customer_id"`
	StartDate           time.Time  `gorm:"column:start_date;not null"`
	EndDate             *time.Time `gorm:"column:end_date"`
	EndReason           *string    `gorm:"column:end_reason"`
	EndNotificationDate *time.Time `gorm:"column:end_notification_date"`
	OtherMisc           *string    `gorm:"column:other_misc"`
	Versions            []Version  `gorm:"column:versions;serializer:json"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Contract) TableName() string {
	return "contracts"
}

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
