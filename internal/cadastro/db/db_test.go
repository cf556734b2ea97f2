package db

import (
	"context"
	"errors"
	"testing"
	"time"

	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"github.com/gartstein/cadastro/internal/cadastro/models"
	"github.com/gartstein/cadastro/internal/pkg/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB opens a migrated in-memory SQLite database with foreign keys enforced.
func SetupTestDB(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(&Config{Driver: DriverSQLite, DSN: ":memory:?_foreign_keys=on"})
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newCompany(cnpj string) *models.Company {
	return &models.Company{CNPJ: cnpj, NomeFantasia: "Empresa " + cnpj, CEP: "80010000", Estado: "PR"}
}

func newSupplier(doc string) *models.Supplier {
	birth := models.NewDate(1990, time.April, 12)
	return &models.Supplier{
		CPFCNPJ:    doc,
		Nome:       "Fornecedor " + doc,
		Email:      doc + "@example.com",
		PersonType: models.Individual,
		RG:         utils.Ptr("998877"),
		BirthDate:  &birth,
		CEP:        "01001000",
	}
}

// TestCreateCompany tests the creation of a company record.
func TestCreateCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := newCompany("11222333000181")
	require.NoError(t, repo.CreateCompany(ctx, company), "CreateCompany should succeed")
	assert.NotZero(t, company.ID, "CreateCompany should assign an ID")

	retrieved, err := repo.GetCompany(ctx, company.ID)
	require.NoError(t, err, "GetCompany should retrieve the created company")
	assert.Equal(t, company.CNPJ, retrieved.CNPJ)
	assert.Equal(t, company.NomeFantasia, retrieved.NomeFantasia)
}

func TestCreateCompanyDuplicateCNPJ(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateCompany(ctx, newCompany("11222333000181")))
	err := repo.CreateCompany(ctx, newCompany("11222333000181"))

	assert.ErrorIs(t, err, e.ErrDuplicateKey)
	assert.ErrorIs(t, err, e.ErrConflict)
}

// TestGetCompanyNotFound verifies error handling when the company does not exist.
func TestGetCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.GetCompany(context.Background(), 42)
	assert.ErrorIs(t, err, e.ErrNotFound, "GetCompany should return ErrNotFound for non-existent company")
}

func TestListCompanies(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	companies, err := repo.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Empty(t, companies)

	require.NoError(t, repo.CreateCompany(ctx, newCompany("11111111000111")))
	require.NoError(t, repo.CreateCompany(ctx, newCompany("22222222000122")))

	companies, err = repo.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "11111111000111", companies[0].CNPJ)
	assert.Equal(t, "22222222000122", companies[1].CNPJ)
}

// TestSaveCompany checks that every mutable column is overwritten.
func TestSaveCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := newCompany("11222333000181")
	require.NoError(t, repo.CreateCompany(ctx, company))

	company.NomeFantasia = "Novo Nome"
	company.Estado = "SP"
	require.NoError(t, repo.SaveCompany(ctx, company))

	updated, err := repo.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Novo Nome", updated.NomeFantasia)
	assert.Equal(t, "SP", updated.Estado)
	assert.Equal(t, "11222333000181", updated.CNPJ)
}

func TestSaveCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	company := newCompany("11222333000181")
	company.ID = 99
	err := repo.SaveCompany(context.Background(), company)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestDeleteCompanyNotFound checks behavior when trying to delete a non-existent company.
func TestDeleteCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	err := repo.DeleteCompany(context.Background(), 7)
	assert.ErrorIs(t, err, e.ErrNotFound, "DeleteCompany should return ErrNotFound for missing company")
}

func TestCompanyExistsByCNPJ(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	exists, err := repo.CompanyExistsByCNPJ(ctx, "11222333000181")
	require.NoError(t, err)
	assert.False(t, exists, "unknown cnpj should not exist")

	require.NoError(t, repo.CreateCompany(ctx, newCompany("11222333000181")))

	exists, err = repo.CompanyExistsByCNPJ(ctx, "11222333000181")
	require.NoError(t, err)
	assert.True(t, exists, "registered cnpj should exist")
}

func TestSupplierRoundTrip(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	supplier := newSupplier("12345678901")
	require.NoError(t, repo.CreateSupplier(ctx, supplier))

	got, err := repo.GetSupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Individual, got.PersonType)
	require.NotNil(t, got.RG)
	assert.Equal(t, "998877", *got.RG)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, "1990-04-12", got.BirthDate.String())

	got.PersonType = models.Organization
	got.RG = nil
	got.BirthDate = nil
	require.NoError(t, repo.SaveSupplier(ctx, got))

	saved, err := repo.GetSupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Organization, saved.PersonType)
	assert.Nil(t, saved.RG)
	assert.Nil(t, saved.BirthDate)
}

func TestListSuppliersFilter(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	a := newSupplier("12345678901")
	a.Nome = "Maria Silva"
	b := newSupplier("98765432100")
	b.Nome = "João Souza"
	require.NoError(t, repo.CreateSupplier(ctx, a))
	require.NoError(t, repo.CreateSupplier(ctx, b))

	all, err := repo.ListSuppliers(ctx, models.SupplierFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := repo.ListSuppliers(ctx, models.SupplierFilter{Nome: "maria"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, a.ID, byName[0].ID)

	byDoc, err := repo.ListSuppliers(ctx, models.SupplierFilter{CPFCNPJ: "654"})
	require.NoError(t, err)
	require.Len(t, byDoc, 1)
	assert.Equal(t, b.ID, byDoc[0].ID)
}

func TestListSuppliersFilterMatchesWildcardsLiterally(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	plain := newSupplier("12345678901")
	plain.Nome = "Maria Silva"
	percent := newSupplier("98765432100")
	percent.Nome = "Loja 100% Natural"
	underscore := newSupplier("11122233344")
	underscore.Nome = "casa_do_pao"
	for _, s := range []*models.Supplier{plain, percent, underscore} {
		require.NoError(t, repo.CreateSupplier(ctx, s))
	}

	byPercent, err := repo.ListSuppliers(ctx, models.SupplierFilter{Nome: "%"})
	require.NoError(t, err)
	require.Len(t, byPercent, 1)
	assert.Equal(t, percent.ID, byPercent[0].ID)

	byUnderscore, err := repo.ListSuppliers(ctx, models.SupplierFilter{Nome: "_"})
	require.NoError(t, err)
	require.Len(t, byUnderscore, 1)
	assert.Equal(t, underscore.ID, byUnderscore[0].ID)

	byDoc, err := repo.ListSuppliers(ctx, models.SupplierFilter{CPFCNPJ: "_"})
	require.NoError(t, err)
	assert.Empty(t, byDoc)
}

func TestSupplierExistsByCPFCNPJ(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSupplier(ctx, newSupplier("12345678901")))

	exists, err := repo.SupplierExistsByCPFCNPJ(ctx, "12345678901")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SupplierExistsByCPFCNPJ(ctx, "00000000000")
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.CreateSupplier(ctx, newSupplier("12345678901"))
	assert.ErrorIs(t, err, e.ErrDuplicateKey)
}

func TestLinks(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := newCompany("11222333000181")
	require.NoError(t, repo.CreateCompany(ctx, company))
	s1 := newSupplier("12345678901")
	s2 := newSupplier("98765432100")
	require.NoError(t, repo.CreateSupplier(ctx, s1))
	require.NoError(t, repo.CreateSupplier(ctx, s2))

	link := &models.Link{CompanyID: company.ID, SupplierID: s1.ID}
	require.NoError(t, repo.CreateLink(ctx, link))
	assert.NotZero(t, link.ID)
	require.NoError(t, repo.CreateLink(ctx, &models.Link{CompanyID: company.ID, SupplierID: s2.ID}))

	t.Run("pair is unique", func(t *testing.T) {
		err := repo.CreateLink(ctx, &models.Link{CompanyID: company.ID, SupplierID: s1.ID})
		assert.ErrorIs(t, err, e.ErrDuplicateKey)
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := repo.LinkExists(ctx, company.ID, s1.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("lists linked suppliers", func(t *testing.T) {
		linked, err := repo.ListLinkedSuppliers(ctx, company.ID)
		require.NoError(t, err)
		require.Len(t, linked, 2)
		assert.Equal(t, s1.ID, linked[0].ID)
		assert.Equal(t, s2.ID, linked[1].ID)
	})

	t.Run("foreign keys restrict deletes", func(t *testing.T) {
		err := repo.DeleteCompany(ctx, company.ID)
		assert.ErrorIs(t, err, e.ErrReferenceViolation)
		err = repo.DeleteSupplier(ctx, s1.ID)
		assert.ErrorIs(t, err, e.ErrReferenceViolation)
	})

	t.Run("unknown references are rejected", func(t *testing.T) {
		err := repo.CreateLink(ctx, &models.Link{CompanyID: company.ID, SupplierID: 404})
		assert.ErrorIs(t, err, e.ErrReferenceViolation)
	})

	t.Run("delete single link", func(t *testing.T) {
		require.NoError(t, repo.DeleteLink(ctx, company.ID, s2.ID))
		assert.ErrorIs(t, repo.DeleteLink(ctx, company.ID, s2.ID), e.ErrNotFound)
	})

	t.Run("purge by supplier then company", func(t *testing.T) {
		n, err := repo.DeleteLinksBySupplier(ctx, s1.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.DeleteLinksByCompany(ctx, company.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, repo.DeleteCompany(ctx, company.ID))
	})
}

// TestWithTransaction ensures transactions commit and roll back.
func TestWithTransaction(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(txRepo *Repository) error {
		return txRepo.CreateCompany(ctx, newCompany("11111111000111"))
	})
	require.NoError(t, err, "WithTransaction should execute successfully")

	exists, err := repo.CompanyExistsByCNPJ(ctx, "11111111000111")
	require.NoError(t, err)
	assert.True(t, exists, "company should exist after commit")

	boom := errors.New("boom")
	err = repo.WithTransaction(ctx, func(txRepo *Repository) error {
		if err := txRepo.CreateCompany(ctx, newCompany("22222222000122")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err = repo.CompanyExistsByCNPJ(ctx, "22222222000122")
	require.NoError(t, err)
	assert.False(t, exists, "company should not exist after rollback")
}

func TestPing(t *testing.T) {
	repo := SetupTestDB(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "record not found", in: gorm.ErrRecordNotFound, want: e.ErrNotFound},
		{name: "gorm duplicate", in: gorm.ErrDuplicatedKey, want: e.ErrDuplicateKey},
		{name: "gorm foreign key", in: gorm.ErrForeignKeyViolated, want: e.ErrReferenceViolation},
		{name: "pg unique violation", in: &pgconn.PgError{Code: "23505"}, want: e.ErrDuplicateKey},
		{name: "pg foreign key violation", in: &pgconn.PgError{Code: "23503"}, want: e.ErrReferenceViolation},
		{name: "sqlite message", in: errors.New("FOREIGN KEY constraint failed"), want: e.ErrReferenceViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.in), tt.want)
		})
	}

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
	assert.NoError(t, translateError(nil))
}

func TestConfigDialector(t *testing.T) {
	_, err := (&Config{Driver: "oracle"}).Dialector()
	assert.Error(t, err)

	_, err = (&Config{Driver: DriverSQLite}).Dialector()
	assert.Error(t, err, "sqlite requires a dsn")

	d, err := (&Config{Driver: DriverPostgres, Host: "localhost", Port: 5432}).Dialector()
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on", sqliteDSN(":memory:"))
	assert.Equal(t, "file:test.db?cache=shared&_foreign_keys=on", sqliteDSN("file:test.db?cache=shared"))
	assert.Equal(t, ":memory:?_foreign_keys=off", sqliteDSN(":memory:?_foreign_keys=off"))
	assert.Equal(t, ":memory:?_fk=1", sqliteDSN(":memory:?_fk=1"))

	repo, err := NewRepository(&Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	err = repo.CreateLink(context.Background(), &models.Link{CompanyID: 41, SupplierID: 42})
	assert.ErrorIs(t, err, e.ErrReferenceViolation)
}
