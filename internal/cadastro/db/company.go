package db

import (
	"context"
	"time"

	dbmodels "github.com/gartstein/cadastro/internal/cadastro/db/models"
	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/models"
)

func (r *Repository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var rows []dbmodels.Company
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	companies := make([]models.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, *rows[i].ToDomain())
	}
	return companies, nil
}

func (r *Repository) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	var row dbmodels.Company
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

// CreateCompany inserts the company and sets its generated ID.
func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	row := dbmodels.NewCompany(company)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateError(err)
	}
	company.ID = row.ID
	company.CreatedAt = row.CreatedAt
	company.UpdatedAt = row.UpdatedAt
	return nil
}

// SaveCompany overwrites every mutable column of an existing company.
func (r *Repository) SaveCompany(ctx context.Context, company *models.Company) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("id = ?", company.ID).
		Updates(map[string]interface{}{
			"cnpj":          company.CNPJ,
			"nome_fantasia": company.NomeFantasia,
			"cep":           company.CEP,
			"estado":        company.Estado,
			"updated_at":    now,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	company.UpdatedAt = now
	return nil
}

func (r *Repository) DeleteCompany(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&dbmodels.Company{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CompanyExistsByCNPJ(ctx context.Context, cnpj string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("cnpj = ?", cnpj).
		Count(&count)
	return count > 0, translateError(result.Error)
}
