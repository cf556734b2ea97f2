package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gartstein/cadastro/internal/cadastro/cep"
	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/metrics"
	"github.com/gartstein/cadastro/internal/cadastro/models"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// CompanyController is the business logic the company routes invoke.
type CompanyController interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompany(ctx context.Context, id int64) (*models.Company, error)
	CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error)
	UpdateCompany(ctx context.Context, id int64, update *models.CompanyUpdate) (*models.Company, error)
	DeleteCompany(ctx context.Context, id int64) error
}

// SupplierController is the business logic the supplier routes invoke.
type SupplierController interface {
	ListSuppliers(ctx context.Context, filter models.SupplierFilter) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, update *models.SupplierUpdate) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error
}

// LinkController is the business logic of the company/supplier association routes.
type LinkController interface {
	LinkSupplier(ctx context.Context, companyID, supplierID int64) (*models.Link, error)
	UnlinkSupplier(ctx context.Context, companyID, supplierID int64) error
	ListLinkedSuppliers(ctx context.Context, companyID int64) ([]models.Supplier, error)
}

// AddressLookup resolves postal codes.
type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (*cep.Address, error)
}

// Handler serves the REST API.
type Handler struct {
	companies CompanyController
	suppliers SupplierController
	links     LinkController
	addresses AddressLookup
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewHandler creates a Handler. addresses and m may be nil, in which case
// the CEP route and instrumentation are left out.
func NewHandler(
	companies CompanyController,
	suppliers SupplierController,
	links LinkController,
	addresses AddressLookup,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		companies: companies,
		suppliers: suppliers,
		links:     links,
		addresses: addresses,
		metrics:   m,
		logger:    logger.Named("http_handler"),
	}
}

type route struct {
	method  string
	pattern string
	handle  runtime.HandlerFunc
}

func (h *Handler) routes() []route {
	rs := []route{
		{http.MethodGet, "/empresas", h.listCompanies},
		{http.MethodPost, "/empresas", h.createCompany},
		{http.MethodGet, "/empresas/{id}", h.getCompany},
		{http.MethodPut, "/empresas/{id}", h.updateCompany},
		{http.MethodPatch, "/empresas/{id}", h.updateCompany},
		{http.MethodDelete, "/empresas/{id}", h.deleteCompany},

		{http.MethodGet, "/fornecedores", h.listSuppliers},
		{http.MethodPost, "/fornecedores", h.createSupplier},
		{http.MethodGet, "/fornecedores/{id}", h.getSupplier},
		{http.MethodPut, "/fornecedores/{id}", h.updateSupplier},
		{http.MethodPatch, "/fornecedores/{id}", h.updateSupplier},
		{http.MethodDelete, "/fornecedores/{id}", h.deleteSupplier},

		{http.MethodGet, "/empresas/{empresaId}/fornecedores", h.listLinkedSuppliers},
		{http.MethodPost, "/empresas/{empresaId}/fornecedores/{fornecedorId}", h.linkSupplier},
		{http.MethodDelete, "/empresas/{empresaId}/fornecedores/{fornecedorId}", h.unlinkSupplier},
	}
	if h.addresses != nil {
		rs = append(rs, route{http.MethodGet, "/cep/{cep}", h.lookupCEP})
	}
	return rs
}

// Register adds every route, plus /metrics when metrics are enabled, to mux.
func (h *Handler) Register(mux *runtime.ServeMux) error {
	for _, rt := range h.routes() {
		if err := mux.HandlePath(rt.method, rt.pattern, h.instrument(rt.pattern, rt.handle)); err != nil {
			return fmt.Errorf("register %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	if h.metrics != nil {
		promHandler := h.metrics.Handler()
		err := mux.HandlePath(http.MethodGet, "/metrics", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			promHandler.ServeHTTP(w, r)
		})
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}

func (h *Handler) instrument(pattern string, fn runtime.HandlerFunc) runtime.HandlerFunc {
	if h.metrics == nil {
		return fn
	}
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		h.metrics.Instrument(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, params)
		})).ServeHTTP(w, r)
	}
}

// pathID parses a positive numeric path parameter.
func pathID(params map[string]string, name string) (int64, error) {
	id, err := strconv.ParseInt(params[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", e.ErrInvalidInput, name)
	}
	return id, nil
}
