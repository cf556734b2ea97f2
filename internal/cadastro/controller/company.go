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

// CompanyService manages companies via repository operations and
// event production.
type CompanyService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

func NewCompanyService(repo Repository, producer EventProducer, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("company_service"),
	}
}

func (s *CompanyService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetCompany retrieves a Company by ID, returning ErrNotFound if missing.
func (s *CompanyService) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// CreateCompany validates the company, makes sure its CNPJ is not yet
// registered and stores it.
func (s *CompanyService) CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error) {
	if company == nil {
		return nil, fmt.Errorf("%w: company is required", e.ErrInvalidInput)
	}
	company.ID = 0
	company.CNPJ = rules.NormalizeTaxID(company.CNPJ)
	if err := rules.ValidateCompany(company); err != nil {
		return nil, err
	}

	exists, err := s.repo.CompanyExistsByCNPJ(ctx, company.CNPJ)
	if err != nil {
		return nil, fmt.Errorf("failed to check cnpj existence: %w", err)
	}
	if exists {
		return nil, e.ErrDuplicateTaxID
	}

	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, writeError("create company", err)
	}
	s.producer.Produce(events.CompanyEvent(events.CompanyCreated, company))
	return company, nil
}

// UpdateCompany merges the non-nil fields of update into the stored company.
// The CNPJ uniqueness check only runs when the CNPJ actually changes.
func (s *CompanyService) UpdateCompany(ctx context.Context, id int64, update *models.CompanyUpdate) (*models.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	if update != nil && update.CNPJ != nil {
		cnpj := rules.NormalizeTaxID(*update.CNPJ)
		if cnpj != company.CNPJ {
			exists, err := s.repo.CompanyExistsByCNPJ(ctx, cnpj)
			if err != nil {
				return nil, fmt.Errorf("failed to check cnpj existence: %w", err)
			}
			if exists {
				return nil, e.ErrDuplicateTaxID
			}
		}
	}

	company.Apply(update)
	if err := rules.ValidateCompany(company); err != nil {
		return nil, err
	}
	if err := s.repo.SaveCompany(ctx, company); err != nil {
		return nil, writeError("update company", err)
	}
	s.producer.Produce(events.CompanyEvent(events.CompanyUpdated, company))
	return company, nil
}

// DeleteCompany removes the company's links and then the company itself
// in a single transaction.
func (s *CompanyService) DeleteCompany(ctx context.Context, id int64) error {
	var company *models.Company
	var purged int64
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		var err error
		if company, err = tx.GetCompany(ctx, id); err != nil {
			return err
		}
		if purged, err = tx.DeleteLinksByCompany(ctx, id); err != nil {
			return err
		}
		return tx.DeleteCompany(ctx, id)
	})
	if err != nil {
		return deleteError("company", id, err)
	}

	s.logger.Info("company deleted", zap.Int64("company_id", id), zap.Int64("links_removed", purged))
	s.producer.Produce(events.CompanyEvent(events.CompanyDeleted, company))
	return nil
}
