package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/cadastro/internal/cadastro/db"
	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/events"
	"github.com/gartstein/cadastro/internal/cadastro/models"
	"github.com/gartstein/cadastro/internal/cadastro/rules"
	"go.uber.org/zap"
)

// SupplierService manages suppliers via repository operations and
// event production.
type SupplierService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

func NewSupplierService(repo Repository, producer EventProducer, logger *zap.Logger) *SupplierService {
	return &SupplierService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("supplier_service"),
	}
}

func (s *SupplierService) ListSuppliers(ctx context.Context, filter models.SupplierFilter) ([]models.Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *SupplierService) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	supplier, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return supplier, nil
}

// CreateSupplier validates the supplier, including the documents required
// from individuals, checks CPF/CNPJ uniqueness and stores it.
func (s *SupplierService) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if supplier == nil {
		return nil, fmt.Errorf("%w: supplier is required", e.ErrInvalidInput)
	}
	supplier.ID = 0
	supplier.CPFCNPJ = rules.NormalizeTaxID(supplier.CPFCNPJ)
	if err := rules.ValidateSupplier(supplier); err != nil {
		return nil, err
	}

	exists, err := s.repo.SupplierExistsByCPFCNPJ(ctx, supplier.CPFCNPJ)
	if err != nil {
		return nil, fmt.Errorf("failed to check cpf/cnpj existence: %w", err)
	}
	if exists {
		return nil, e.ErrDuplicateTaxID
	}

	if err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		return nil, writeError("create supplier", err)
	}
	s.producer.Produce(events.SupplierEvent(events.SupplierCreated, supplier))
	return supplier, nil
}

// UpdateSupplier merges the non-nil fields of update into the stored
// supplier. Individual documents are checked on the merged record.
func (s *SupplierService) UpdateSupplier(ctx context.Context, id int64, update *models.SupplierUpdate) (*models.Supplier, error) {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if update != nil && update.CPFCNPJ != nil {
		doc := rules.NormalizeTaxID(*update.CPFCNPJ)
		if doc != supplier.CPFCNPJ {
			exists, err := s.repo.SupplierExistsByCPFCNPJ(ctx, doc)
			if err != nil {
				return nil, fmt.Errorf("failed to check cpf/cnpj existence: %w", err)
			}
			if exists {
				return nil, e.ErrDuplicateTaxID
			}
		}
	}

	supplier.Apply(update)
	if err := rules.ValidateSupplier(supplier); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSupplier(ctx, supplier); err != nil {
		return nil, writeError("update supplier", err)
	}
	s.producer.Produce(events.SupplierEvent(events.SupplierUpdated, supplier))
	return supplier, nil
}

// DeleteSupplier removes the supplier's links and then the supplier itself
// in a single transaction.
func (s *SupplierService) DeleteSupplier(ctx context.Context, id int64) error {
	var supplier *models.Supplier
	var purged int64
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		var err error
		if supplier, err = tx.GetSupplier(ctx, id); err != nil {
			return err
		}
		if purged, err = tx.DeleteLinksBySupplier(ctx, id); err != nil {
			return err
		}
		return tx.DeleteSupplier(ctx, id)
	})
	if err != nil {
		return deleteError("supplier", id, err)
	}

	s.logger.Info("supplier deleted", zap.Int64("supplier_id", id), zap.Int64("links_removed", purged))
	s.producer.Produce(events.SupplierEvent(events.SupplierDeleted, supplier))
	return nil
}
