package customer

import "time"

// Customer is a care recipient. ReferentID points at the auxiliary acting as
// planning referent, cleared when that auxiliary's contract ends.
type Customer struct {
	ID         int64     `gorm:"primaryKey"`
	CompanyID  int64     `gorm:"column:company_id;not null;index"`
	FirstName  string    `gorm:"column:first_name;not null"`
	LastName   string    `gorm:"column:last_name;not null"`
	ReferentID *int64    `gorm:"column:referent_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string {
	return "customers"
}
