package db

import (
	"context"
	"strings"
	"time"

	dbmodels "github.com/gartstein/cadastro/internal/cadastro/db/models"
	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/models"
)

// ListSuppliers returns the suppliers matching filter ordered by ID.
func (r *Repository) ListSuppliers(ctx context.Context, filter models.SupplierFilter) ([]models.Supplier, error) {
	query := r.db.WithContext(ctx).Model(&dbmodels.Supplier{})
	if nome := strings.TrimSpace(filter.Nome); nome != "" {
		query = query.Where(`LOWER(nome) LIKE ? ESCAPE '\'`, containsPattern(strings.ToLower(nome)))
	}
	if doc := strings.TrimSpace(filter.CPFCNPJ); doc != "" {
		query = query.Where(`cpf_cnpj LIKE ? ESCAPE '\'`, containsPattern(doc))
	}

	var rows []dbmodels.Supplier
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toSuppliers(rows), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *Repository) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	var row dbmodels.Supplier
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

func (r *Repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	row := dbmodels.NewSupplier(supplier)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateError(err)
	}
	supplier.ID = row.ID
	supplier.CreatedAt = row.CreatedAt
	supplier.UpdatedAt = row.UpdatedAt
	return nil
}

// SaveSupplier overwrites every mutable column of an existing supplier.
func (r *Repository) SaveSupplier(ctx context.Context, supplier *models.Supplier) error {
	row := dbmodels.NewSupplier(supplier)
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&dbmodels.Supplier{}).
		Where("id = ?", supplier.ID).
		Updates(map[string]interface{}{
			"nome":            row.Nome,
			"cpf_cnpj":        row.CPFCNPJ,
			"email":           row.Email,
			"rg":              row.RG,
			"data_nascimento": row.DataNascimento,
			"cep":             row.CEP,
			"tipo_pessoa":     row.TipoPessoa,
			"updated_at":      now,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	supplier.UpdatedAt = now
	return nil
}

func (r *Repository) DeleteSupplier(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&dbmodels.Supplier{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) SupplierExistsByCPFCNPJ(ctx context.Context, cpfCnpj string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Supplier{}).
		Where("cpf_cnpj = ?", cpfCnpj).
		Count(&count)
	return count > 0, translateError(result.Error)
}

func toSuppliers(rows []dbmodels.Supplier) []models.Supplier {
	suppliers := make([]models.Supplier, 0, len(rows))
	for i := range rows {
		suppliers = append(suppliers, *rows[i].ToDomain())
	}
	return suppliers
}
