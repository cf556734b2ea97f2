package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gartstein/cadastro/internal/cadastro/db"
	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/events"
	"github.com/gartstein/cadastro/internal/cadastro/models"
	"github.com/gartstein/cadastro/internal/cadastro/rules"
	"go.uber.org/zap"
)

// LinkService manages the association between companies and suppliers.
type LinkService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
	now      func() time.Time
}

func NewLinkService(repo Repository, producer EventProducer, logger *zap.Logger) *LinkService {
	return &LinkService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("link_service"),
		now:      time.Now,
	}
}

// LinkSupplier links a supplier to a company after checking that both
// exist, that the supplier is eligible and that the pair is not yet linked.
func (s *LinkService) LinkSupplier(ctx context.Context, companyID, supplierID int64) (*models.Link, error) {
	company, err := s.getCompany(ctx, s.repo.GetCompany, companyID)
	if err != nil {
		return nil, err
	}
	supplier, err := s.getSupplier(ctx, s.repo.GetSupplier, supplierID)
	if err != nil {
		return nil, err
	}

	if err := rules.CheckLinkEligibility(company, supplier, s.now()); err != nil {
		return nil, err
	}

	exists, err := s.repo.LinkExists(ctx, companyID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to check link existence: %w", err)
	}
	if exists {
		return nil, e.ErrAlreadyLinked
	}

	link := &models.Link{CompanyID: companyID, SupplierID: supplierID}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		switch {
		case errors.Is(err, e.ErrDuplicateKey):
			return nil, e.ErrAlreadyLinked
		case errors.Is(err, e.ErrConflict):
			return nil, err
		default:
			return nil, fmt.Errorf("failed to create link: %w", err)
		}
	}
	s.producer.Produce(events.LinkEvent(events.SupplierLinked, link))
	return link, nil
}

// UnlinkSupplier removes an existing link. Both entities must exist and
// a missing link is reported as ErrNotLinked.
func (s *LinkService) UnlinkSupplier(ctx context.Context, companyID, supplierID int64) error {
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if _, err := s.getCompany(ctx, tx.GetCompany, companyID); err != nil {
			return err
		}
		if _, err := s.getSupplier(ctx, tx.GetSupplier, supplierID); err != nil {
			return err
		}
		exists, err := tx.LinkExists(ctx, companyID, supplierID)
		if err != nil {
			return fmt.Errorf("failed to check link existence: %w", err)
		}
		if !exists {
			return e.ErrNotLinked
		}
		if err := tx.DeleteLink(ctx, companyID, supplierID); err != nil {
			if errors.Is(err, e.ErrNotFound) {
				return e.ErrNotLinked
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrConflict) {
			return err
		}
		return fmt.Errorf("failed to unlink supplier: %w", err)
	}

	s.producer.Produce(events.LinkEvent(events.SupplierUnlinked, &models.Link{CompanyID: companyID, SupplierID: supplierID}))
	return nil
}

// ListLinkedSuppliers returns the suppliers linked to an existing company.
func (s *LinkService) ListLinkedSuppliers(ctx context.Context, companyID int64) ([]models.Supplier, error) {
	if _, err := s.getCompany(ctx, s.repo.GetCompany, companyID); err != nil {
		return nil, err
	}
	suppliers, err := s.repo.ListLinkedSuppliers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *LinkService) getCompany(ctx context.Context, get func(context.Context, int64) (*models.Company, error), id int64) (*models.Company, error) {
	company, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: company %d", e.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

func (s *LinkService) getSupplier(ctx context.Context, get func(context.Context, int64) (*models.Supplier, error), id int64) (*models.Supplier, error) {
	supplier, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: supplier %d", e.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return supplier, nil
}
