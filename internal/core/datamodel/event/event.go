package event

import "time"

const (
	TypeIntervention   = "intervention"
	TypeAbsence        = "absence"
	TypeInternalHour   = "internal_hour"
	TypeUnavailability = "unavailability"
)

// Event is one scheduled slot (care intervention, absence, internal hour or
// unavailability) on an auxiliary's planning.
type Event struct {
	ID           int64      `gorm:"primaryKey"`
	CompanyID    int64      `gorm:"column:company_id;not null;index"`
	Type         string     `gorm:"column:type;not null"`
	AuxiliaryID  *int64     `gorm:"column:auxiliary_id;index"`
	CustomerID   *int64     `gorm:"column:customer_id"`
	SectorID     *int64     `gorm:"column:sector_id"`
	StartDate    time.Time  `gorm:"column:start_date;not null"`
	EndDate      time.Time  `gorm:"column:end_date;not null"`
	RepetitionID *string    `gorm:"column:repetition_id"`
	IsBilled     bool       `gorm:"column:is_billed;default:false"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}

// Repetition is the template a recurring event series is expanded from.
type Repetition struct {
	ID          string    `gorm:"primaryKey"`
	CompanyID   int64     `gorm:"column:company_id;not null"`
	AuxiliaryID *int64    `gorm:"column:auxiliary_id;index"`
	Frequency   string    `gorm:"column:frequency;not null"`
	StartDate   time.Time `gorm:"column:start_date;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Repetition) TableName() string {
	return "repetitions"
}
