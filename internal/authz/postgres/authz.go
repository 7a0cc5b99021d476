package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/care-management/internal/authz"
	companyDatamodel "github.com/frahmantamala/care-management/internal/core/datamodel/company"
	customerDatamodel "github.com/frahmantamala/care-management/internal/core/datamodel/customer"
	userDatamodel "github.com/frahmantamala/care-management/internal/core/datamodel/user"
)

// AuthzRepository implements the authz.Repository interface using GORM
type AuthzRepository struct {
	db *gorm.DB
}

func NewAuthzRepository(db *gorm.DB) authz.Repository {
	return &AuthzRepository{db: db}
}

func (r *AuthzRepository) GetUserForValidation(ctx context.Context, userID int64) (*authz.ResolvedUser, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}

	roles, err := r.loadRoleSlots(ctx, &u)
	if err != nil {
		return nil, err
	}

	companyHistory, err := r.loadCompanyMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdingHistory, err := r.loadHoldingMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &authz.ResolvedUser{
		ID:                 u.ID,
		Identity:           authz.Identity{FirstName: u.FirstName, LastName: u.LastName},
		Email:              u.Email,
		Roles:              roles,
		CompanyMemberships: companyHistory,
		HoldingMemberships: holdingHistory,
	}, nil
}

func (r *AuthzRepository) loadRoleSlots(ctx context.Context, u *userDatamodel.User) (authz.RoleSlots, error) {
	var slots authz.RoleSlots

	ids := make([]int64, 0, 3)
	for _, id := range []*int64{u.ClientRoleID, u.VendorRoleID, u.HoldingRoleID} {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	if len(ids) == 0 {
		return slots, nil
	}

	var roles []userDatamodel.Role
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return slots, err
	}

	byID := make(map[int64]*authz.Role, len(roles))
	for i := range roles {
		byID[roles[i].ID] = &authz.Role{
			ID:        roles[i].ID,
			Name:      roles[i].Name,
			Interface: authz.RoleInterface(roles[i].Interface),
		}
	}

	if u.ClientRoleID != nil {
		slots.Client = byID[*u.ClientRoleID]
	}
	if u.VendorRoleID != nil {
		slots.Vendor = byID[*u.VendorRoleID]
	}
	if u.HoldingRoleID != nil {
		slots.Holding = byID[*u.HoldingRoleID]
	}
	return slots, nil
}

func (r *AuthzRepository) loadCompanyMemberships(ctx context.Context, userID int64) ([]authz.Membership, error) {
	var rows []userDatamodel.CompanyMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	history := make([]authz.Membership, len(rows))
	for i, row := range rows {
		history[i] = authz.Membership{
			EntityID:  row.CompanyID,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
		}
	}
	return history, nil
}

func (r *AuthzRepository) loadHoldingMemberships(ctx context.Context, userID int64) ([]authz.Membership, error) {
	var rows []userDatamodel.HoldingMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	history := make([]authz.Membership, len(rows))
	for i, row := range rows {
		history[i] = authz.Membership{
			EntityID:  row.HoldingID,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
		}
	}
	return history, nil
}

func (r *AuthzRepository) GetCompany(ctx context.Context, companyID int64) (*authz.Company, error) {
	var c companyDatamodel.Company
	if err := r.db.WithContext(ctx).Where("id = ?", companyID).First(&c).Error; err != nil {
		return nil, err
	}
	return &authz.Company{
		ID:            c.ID,
		Name:          c.Name,
		HoldingID:     c.HoldingID,
		Subscriptions: c.Subscriptions,
	}, nil
}

func (r *AuthzRepository) GetHolding(ctx context.Context, holdingID int64) (*authz.Holding, error) {
	var h companyDatamodel.Holding
	if err := r.db.WithContext(ctx).Where("id = ?", holdingID).First(&h).Error; err != nil {
		return nil, err
	}
	return &authz.Holding{ID: h.ID, Name: h.Name}, nil
}

func (r *AuthzRepository) GetHoldingCompanyIDs(ctx context.Context, holdingID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&companyDatamodel.Company{}).
		Where("holding_id = ?", holdingID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *AuthzRepository) GetReferredCustomerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&customerDatamodel.Customer{}).
		Where("referent_id = ?", userID).
		Pluck("id", &ids).Error
	return ids, err
}
