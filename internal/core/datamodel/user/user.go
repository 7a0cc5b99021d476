package user

import "time"

type User struct {
	ID             int64      `gorm:"primaryKey"`
	Email          string     `gorm:"column:email;uniqueIndex;not null"`
	FirstName      string     `gorm:"column:first_name;not null"`
	LastName       string     `gorm:"column:last_name;not null"`
	PasswordHash   string     `gorm:"column:password_hash;not null"`
	Phone          *string    `gorm:"column:phone"`
	SSN            *string    `gorm:"column:ssn"`
	Address        *string    `gorm:"column:address"`
	BirthDate      *time.Time `gorm:"column:birth_date"`
	SectorID       *int64     `gorm:"column:sector_id"`
	ClientRoleID   *int64     `gorm:"column:client_role_id"`
	VendorRoleID   *int64     `gorm:"column:vendor_role_id"`
	HoldingRoleID  *int64     `gorm:"column:holding_role_id"`
	InactivityDate *time.Time `gorm:"column:inactivity_date"`
	ContractIDs    []string   `gorm:"column:contract_ids;serializer:json"`
	IsActive       bool       `gorm:"column:is_active;default:true"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Interface string    `gorm:"column:interface;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// CompanyMembership is one slice of a user's time-bounded company history.
// The currently-active membership is the one whose window contains now.
type CompanyMembership struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	CompanyID int64      `gorm:"column:company_id;not null"`
	StartDate time.Time  `gorm:"column:start_date;not null"`
	EndDate   *time.Time `gorm:"column:end_date"`
}

func (CompanyMembership) TableName() string {
	return "company_memberships"
}

type HoldingMembership struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	HoldingID int64      `gorm:"column:holding_id;not null"`
	StartDate time.Time  `gorm:"column:start_date;not null"`
	EndDate   *time.Time `gorm:"column:end_date"`
}

func (HoldingMembership) TableName() string {
	return "holding_memberships"
}
