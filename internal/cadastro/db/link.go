package db

import (
	"context"

	dbmodels "github.com/gartstein/cadastro/internal/cadastro/db/models"
	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/models"
)

func (r *Repository) LinkExists(ctx context.Context, companyID, supplierID int64) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.CompanySupplier{}).
		Where("company_id = ? AND supplier_id = ?", companyID, supplierID).
		Count(&count)
	return count > 0, translateError(result.Error)
}

// CreateLink inserts the link and sets its generated ID and timestamp.
func (r *Repository) CreateLink(ctx context.Context, link *models.Link) error {
	row := &dbmodels.CompanySupplier{
		CompanyID:  link.CompanyID,
		SupplierID: link.SupplierID,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateError(err)
	}
	*link = *row.ToDomain()
	return nil
}

// ListLinkedSuppliers returns the suppliers linked to a company ordered by ID.
func (r *Repository) ListLinkedSuppliers(ctx context.Context, companyID int64) ([]models.Supplier, error) {
	var rows []dbmodels.Supplier
	err := r.db.WithContext(ctx).Model(&dbmodels.Supplier{}).
		Joins("JOIN empresa_fornecedor ON empresa_fornecedor.supplier_id = fornecedores.id").
		Where("empresa_fornecedor.company_id = ?", companyID).
		Order("fornecedores.id").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toSuppliers(rows), nil
}

// DeleteLinksByCompany removes every link of a company and returns how many were removed.
func (r *Repository) DeleteLinksByCompany(ctx context.Context, companyID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("company_id = ?", companyID).Delete(&dbmodels.CompanySupplier{})
	return result.RowsAffected, translateError(result.Error)
}

// DeleteLinksBySupplier removes every link of a supplier and returns how many were removed.
func (r *Repository) DeleteLinksBySupplier(ctx context.Context, supplierID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID).Delete(&dbmodels.CompanySupplier{})
	return result.RowsAffected, translateError(result.Error)
}

func (r *Repository) DeleteLink(ctx context.Context, companyID, supplierID int64) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND supplier_id = ?", companyID, supplierID).
		Delete(&dbmodels.CompanySupplier{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}
