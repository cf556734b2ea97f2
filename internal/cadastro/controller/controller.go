// Package controller implements the core business logic (service layer)
// for companies, suppliers and the links between them: it validates
// input, applies the association rules and sequences store operations.
package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/cadastro/internal/cadastro/db"
	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/events"
	"github.com/gartstein/cadastro/internal/cadastro/models"
)

type EventProducer interface {
	Produce(event events.Event)
}

// Repository defines the storage interface used by the services.
// Multi-step writes run through WithTransaction.
type Repository interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompany(ctx context.Context, id int64) (*models.Company, error)
	CreateCompany(ctx context.Context, company *models.Company) error
	SaveCompany(ctx context.Context, company *models.Company) error
	CompanyExistsByCNPJ(ctx context.Context, cnpj string) (bool, error)

	ListSuppliers(ctx context.Context, filter models.SupplierFilter) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
	SaveSupplier(ctx context.Context, supplier *models.Supplier) error
	SupplierExistsByCPFCNPJ(ctx context.Context, cpfCnpj string) (bool, error)

	LinkExists(ctx context.Context, companyID, supplierID int64) (bool, error)
	CreateLink(ctx context.Context, link *models.Link) error
	ListLinkedSuppliers(ctx context.Context, companyID int64) ([]models.Supplier, error)

	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}

// deleteError classifies a failed cascade delete: missing records stay
// NotFound, constraint violations become Conflict, the rest is internal.
func deleteError(entity string, id int64, err error) error {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return err
	case errors.Is(err, e.ErrConflict):
		return fmt.Errorf("%w: %s %d cannot be deleted: %v", e.ErrConflict, entity, id, err)
	default:
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
}

// writeError maps a store constraint violation on create or update.
func writeError(action string, err error) error {
	switch {
	case errors.Is(err, e.ErrDuplicateKey):
		return e.ErrDuplicateTaxID
	case errors.Is(err, e.ErrNotFound), errors.Is(err, e.ErrConflict):
		return err
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}
