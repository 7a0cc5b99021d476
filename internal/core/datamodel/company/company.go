package company

import "time"

type Company struct {
	ID            int64           `gorm:"primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	HoldingID     *int64          `gorm:"column:holding_id"`
	Subscriptions map[string]bool `gorm:"column:subscriptions;serializer:json"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Company) TableName() string {
	return "companies"
}

type Holding struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Holding) TableName() string {
	return "holdings"
}

type Sector struct {
	ID        int64     `gorm:"primaryKey"`
	CompanyID int64     `gorm:"column:company_id;not null"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Sector) TableName() string {
	return "sectors"
}
