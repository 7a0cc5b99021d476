package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/care-management/internal"
	"github.com/frahmantamala/care-management/internal/contract"
	contractmodel "github.com/frahmantamala/care-management/internal/core/datamodel/contract"

	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	m := toModel(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return internal.NewInternalError("failed to create contract", err)
	}
	c.CreatedAt = m.CreatedAt
	c.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, companyID int64, id string) (*contract.Contract, error) {
	var m contractmodel.Contract
	err := r.db.WithContext(ctx).
		First(&m, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrContractNotFound
		}
		return nil, internal.NewInternalError("failed to fetch contract", err)
	}
	return fromModel(&m), nil
}

func (r *ContractRepository) ListByUser(ctx context.Context, companyID, userID int64) ([]contract.Contract, error) {
	var models []contractmodel.Contract
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Order("start_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to list contracts", err)
	}
	return fromModels(models), nil
}

func (r *ContractRepository) ListByCompany(ctx context.Context, companyID int64) ([]contract.Contract, error) {
	var models []contractmodel.Contract
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("start_date DESC").
		Find(&models).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to list contracts", err)
	}
	return fromModels(models), nil
}

// ListByEversignID narrows on the serialized version array before the exact
// match happens in memory. LIKE keeps it portable across postgres and the
// sqlite used in tests.
func (r *ContractRepository) ListByEversignID(ctx context.Context, eversignID string) ([]contract.Contract, error) {
	var models []contractmodel.Contract
	err := r.db.WithContext(ctx).
		Where("versions LIKE ?", "%"+eversignID+"%").
		Find(&models).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to search contracts by signature", err)
	}
	return fromModels(models), nil
}

func (r *ContractRepository) Update(ctx context.Context, c *contract.Contract) error {
	m := toModel(c)
	result := r.db.WithContext(ctx).
		Model(&contractmodel.Contract{}).
		Where("id = ? AND company_id = ?", c.ID, c.CompanyID).
		Updates(map[string]interface{}{
			"start_date":            m.StartDate,
			"end_date":              m.EndDate,
			"end_reason":            m.EndReason,
			"end_notification_date": m.EndNotificationDate,
			"other_misc":            m.OtherMisc,
			"versions":              m.Versions,
		})
	if result.Error != nil {
		return internal.NewInternalError("failed to update contract", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrContractNotFound
	}
	return nil
}

func (r *ContractRepository) Delete(ctx context.Context, companyID int64, id string) error {
	result := r.db.WithContext(ctx).
		Delete(&contractmodel.Contract{}, "id = ? AND company_id = ?", id, companyID)
	if result.Error != nil {
		return internal.NewInternalError("failed to delete contract", result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrContractNotFound
	}
	return nil
}

// ApplyVersionEdition lands an edition plan in two sequential writes: unset
// keys first, then set and push keys. Each write rewrites the version array,
// so within a write the row stays consistent.
func (r *ContractRepository) ApplyVersionEdition(ctx context.Context, companyID int64, contractID string, edition contract.VersionEdition) error {
	load := func(tx *gorm.DB) (*contractmodel.Contract, int, error) {
		var m contractmodel.Contract
		if err := tx.First(&m, "id = ? AND company_id = ?", contractID, companyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, internal.ErrContractNotFound
			}
			return nil, 0, internal.NewInternalError("failed to fetch contract", err)
		}
		for i := range m.Versions {
			if m.Versions[i].ID == edition.VersionID {
				return &m, i, nil
			}
		}
		return nil, 0, internal.ErrVersionNotFound
	}

	// phase one: unset keys
	m, idx, err := load(r.db.WithContext(ctx))
	if err != nil {
		return err
	}
	v := &m.Versions[idx]
	changed := false
	if edition.Unset.Signature && v.Signature != nil {
		v.Signature = nil
		changed = true
	}
	if edition.Unset.SignedBy && v.Signature != nil {
		v.Signature.SignedBy = contractmodel.SignedBy{}
		changed = true
	}
	if edition.Unset.AuxiliaryDoc && v.AuxiliaryDoc != nil {
		v.AuxiliaryDoc = nil
		changed = true
	}
	if changed {
		if err := r.saveVersions(ctx, m); err != nil {
			return err
		}
	}

	// phase two: set and push keys
	m, idx, err = load(r.db.WithContext(ctx))
	if err != nil {
		return err
	}
	v = &m.Versions[idx]
	if edition.Set.StartDate != nil {
		v.StartDate = *edition.Set.StartDate
	}
	if edition.Set.WeeklyHours != nil {
		v.WeeklyHours = *edition.Set.WeeklyHours
	}
	if edition.Set.GrossHourlyRate != nil {
		v.GrossHourlyRate = *edition.Set.GrossHourlyRate
	}
	if edition.Set.Signature != nil {
		v.Signature = &contractmodel.Signature{EversignID: edition.Set.Signature.EversignID}
	}
	if edition.Set.AuxiliaryDoc != nil {
		v.AuxiliaryDoc = &contractmodel.Document{
			DriveID: edition.Set.AuxiliaryDoc.DriveID,
			Link:    edition.Set.AuxiliaryDoc.Link,
		}
	}
	if edition.ArchivePush != nil {
		v.AuxiliaryArchives = append(v.AuxiliaryArchives, contractmodel.Document{
			DriveID: edition.ArchivePush.DriveID,
			Link:    edition.ArchivePush.Link,
		})
	}
	if edition.PreviousEndDate != nil && idx > 0 {
		m.Versions[idx-1].EndDate = edition.PreviousEndDate
	}

	updates := map[string]interface{}{"versions": m.Versions}
	if edition.ContractStartDate != nil {
		updates["start_date"] = *edition.ContractStartDate
	}
	result := r.db.WithContext(ctx).
		Model(&contractmodel.Contract{}).
		Where("id = ? AND company_id = ?", contractID, companyID).
		Updates(updates)
	if result.Error != nil {
		return internal.NewInternalError("failed to apply version edition", result.Error)
	}
	return nil
}

func (r *ContractRepository) saveVersions(ctx context.Context, m *contractmodel.Contract) error {
	result := r.db.WithContext(ctx).
		Model(&contractmodel.Contract{}).
		Where("id = ?", m.ID).
		Update("versions", m.Versions)
	if result.Error != nil {
		return internal.NewInternalError("failed to save contract versions", result.Error)
	}
	return nil
}

func fromModels(models []contractmodel.Contract) []contract.Contract {
	out := make([]contract.Contract, len(models))
	for i := range models {
		out[i] = *fromModel(&models[i])
	}
	return out
}

func toModel(c *contract.Contract) *contractmodel.Contract {
	versions := make([]contractmodel.Version, len(c.Versions))
	for i, v := range c.Versions {
		versions[i] = versionToModel(v)
	}
	return &contractmodel.Contract{
		ID:                  c.ID,
		CompanyID:           c.CompanyID,
		UserID:              c.UserID,
		CustomerID:          c.CustomerID,
		StartDate:           c.StartDate,
		EndDate:             c.EndDate,
		EndReason:           c.EndReason,
		EndNotificationDate: c.EndNotificationDate,
		OtherMisc:           c.OtherMisc,
		Versions:            versions,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func fromModel(m *contractmodel.Contract) *contract.Contract {
	versions := make([]contract.Version, len(m.Versions))
	for i, v := range m.Versions {
		versions[i] = versionFromModel(v)
	}
	return &contract.Contract{
		ID:                  m.ID,
		CompanyID:           m.CompanyID,
		UserID:              m.UserID,
		CustomerID:          m.CustomerID,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		EndReason:           m.EndReason,
		EndNotificationDate: m.EndNotificationDate,
		OtherMisc:           m.OtherMisc,
		Versions:            versions,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func versionToModel(v contract.Version) contractmodel.Version {
	mv := contractmodel.Version{
		ID:              v.ID,
		StartDate:       v.StartDate,
		EndDate:         v.EndDate,
		WeeklyHours:     v.WeeklyHours,
		GrossHourlyRate: v.GrossHourlyRate,
	}
	if v.Signature != nil {
		mv.Signature = &contractmodel.Signature{
			EversignID: v.Signature.EversignID,
			SignedBy: contractmodel.SignedBy{
				Auxiliary: v.Signature.SignedBy.Auxiliary,
				Other:     v.Signature.SignedBy.Other,
			},
		}
	}
	if v.AuxiliaryDoc != nil {
		mv.AuxiliaryDoc = &contractmodel.Document{DriveID: v.AuxiliaryDoc.DriveID, Link: v.AuxiliaryDoc.Link}
	}
	for _, d := range v.AuxiliaryArchives {
		mv.AuxiliaryArchives = append(mv.AuxiliaryArchives, contractmodel.Document{DriveID: d.DriveID, Link: d.Link})
	}
	return mv
}

func versionFromModel(mv contractmodel.Version) contract.Version {
	v := contract.Version{
		ID:              mv.ID,
		StartDate:       mv.StartDate,
		EndDate:         mv.EndDate,
		WeeklyHours:     mv.WeeklyHours,
		GrossHourlyRate: mv.GrossHourlyRate,
	}
	if mv.Signature != nil {
		v.Signature = &contract.Signature{
			EversignID: mv.Signature.EversignID,
			SignedBy: contract.SignedBy{
				Auxiliary: mv.Signature.SignedBy.Auxiliary,
				Other:     mv.Signature.SignedBy.Other,
			},
		}
	}
	if mv.AuxiliaryDoc != nil {
		v.AuxiliaryDoc = &contract.Document{DriveID: mv.AuxiliaryDoc.DriveID, Link: mv.AuxiliaryDoc.Link}
	}
	for _, d := range mv.AuxiliaryArchives {
		v.AuxiliaryArchives = append(v.AuxiliaryArchives, contract.Document{DriveID: d.DriveID, Link: d.Link})
	}
	return v
}
