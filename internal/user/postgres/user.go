package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/care-management/internal"
	usermodel "github.com/frahmantamala/care-management/internal/core/datamodel/user"
	"github.com/frahmantamala/care-management/internal/user"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var m usermodel.User
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to fetch user", err)
	}
	return toDomain(&m), nil
}

// GetPasswordForEmail backs the login flow.
func (r *UserRepository) GetPasswordForEmail(email string) (string, int64, error) {
	var m usermodel.User
	if err := r.db.First(&m, "email = ? AND is_active = ?", email, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, internal.ErrInvalidCredentials
		}
		return "", 0, internal.NewInternalError("failed to fetch credentials", err)
	}
	return m.PasswordHash, m.ID, nil
}

func (r *UserRepository) PushContractID(ctx context.Context, userID int64, contractID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m usermodel.User
		if err := tx.First(&m, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrUserNotFound
			}
			return internal.NewInternalError("failed to fetch user", err)
		}
		for _, id := range m.ContractIDs {
			if id == contractID {
				return nil
			}
		}
		m.ContractIDs = append(m.ContractIDs, contractID)
		if err := tx.Model(&m).Update("contract_ids", m.ContractIDs).Error; err != nil {
			return internal.NewInternalError("failed to push contract id", err)
		}
		return nil
	})
}

func (r *UserRepository) PullContractID(ctx context.Context, userID int64, contractID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m usermodel.User
		if err := tx.First(&m, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrUserNotFound
			}
			return internal.NewInternalError("failed to fetch user", err)
		}
		kept := make([]string, 0, len(m.ContractIDs))
		for _, id := range m.ContractIDs {
			if id != contractID {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(m.ContractIDs) {
			return nil
		}
		if err := tx.Model(&m).Update("contract_ids", kept).Error; err != nil {
			return internal.NewInternalError("failed to pull contract id", err)
		}
		return nil
	})
}

func (r *UserRepository) SetInactivityDate(ctx context.Context, userID int64, date *time.Time) error {
	result := r.db.WithContext(ctx).Model(&usermodel.User{}).
		Where("id = ?", userID).
		Update("inactivity_date", date)
	if result.Error != nil {
		return internal.NewInternalError("failed to update inactivity date", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) AssignClientRole(ctx context.Context, userID int64, roleName string) error {
	var role usermodel.Role
	if err := r.db.WithContext(ctx).First(&role, "name = ?", roleName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.NewInternalError("role not provisioned: "+roleName, err)
		}
		return internal.NewInternalError("failed to fetch role", err)
	}
	result := r.db.WithContext(ctx).Model(&usermodel.User{}).
		Where("id = ?", userID).
		Update("client_role_id", role.ID)
	if result.Error != nil {
		return internal.NewInternalError("failed to assign role", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// CountOpenContracts counts contracts without an end date for the user. Used
// to decide whether an inactivity date should be set after a contract ends.
func (r *UserRepository) CountOpenContracts(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("contracts").
		Where("user_id = ? AND end_date IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, internal.NewInternalError("failed to count open contracts", err)
	}
	return count, nil
}

func toDomain(m *usermodel.User) *user.User {
	return &user.User{
		ID:             m.ID,
		Email:          m.Email,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Phone:          m.Phone,
		SSN:            m.SSN,
		Address:        m.Address,
		BirthDate:      m.BirthDate,
		SectorID:       m.SectorID,
		ClientRoleID:   m.ClientRoleID,
		VendorRoleID:   m.VendorRoleID,
		HoldingRoleID:  m.HoldingRoleID,
		InactivityDate: m.InactivityDate,
		ContractIDs:    m.ContractIDs,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
