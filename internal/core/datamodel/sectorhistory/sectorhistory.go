package sectorhistory

import "time"

// SectorHistory is a temporal assignment of an auxiliary to a sector. At most
// one entry per auxiliary/company is open (no end date) at a time.
type SectorHistory struct {
	ID          int64      `gorm:"primaryKey"`
	CompanyID   int64      `gorm:"column:company_id;not null;index"`
	AuxiliaryID int64      `gorm:"column:auxiliary_id;not null;index"`
	SectorID    int64      `gorm:"column:sector_id;not null"`
	StartDate   time.Time  `gorm:"column:start_date;not null"`
	EndDate     *time.Time `gorm:"column:end_date"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (SectorHistory) TableName() string {
	return "sector_histories"
}
