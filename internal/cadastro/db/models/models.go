// Package models contains the database rows of the registry,
// mapped with GORM, and their conversion to domain models.
package models

import (
	"time"

	domain "github.com/gartstein/cadastro/internal/cadastro/models"
	"gorm.io/datatypes"
)

// Company is a row of the empresas table.
type Company struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	CNPJ         string `gorm:"column:cnpj;size:14;not null;uniqueIndex"`
	NomeFantasia string `gorm:"column:nome_fantasia;size:150;not null"`
	CEP          string `gorm:"column:cep;size:8;not null"`
	Estado       string `gorm:"column:estado;size:2;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Company) TableName() string { return "empresas" }

// Supplier is a row of the fornecedores table.
type Supplier struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	Nome           string          `gorm:"column:nome;size:150;not null"`
	CPFCNPJ        string          `gorm:"column:cpf_cnpj;size:14;not null;uniqueIndex"`
	Email          string          `gorm:"column:email;size:150;not null"`
	RG             *string         `gorm:"column:rg;size:20"`
	DataNascimento *datatypes.Date `gorm:"column:data_nascimento"`
	CEP            string          `gorm:"column:cep;size:8;not null"`
	TipoPessoa     string          `gorm:"column:tipo_pessoa;size:2;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Supplier) TableName() string { return "fornecedores" }

// CompanySupplier is a row of the empresa_fornecedor link table. The
// foreign keys restrict deletion of linked companies and suppliers.
type CompanySupplier struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	CompanyID  int64     `gorm:"column:company_id;not null;uniqueIndex:ux_empresa_fornecedor"`
	SupplierID int64     `gorm:"column:supplier_id;not null;uniqueIndex:ux_empresa_fornecedor;index"`
	Company    *Company  `gorm:"foreignKey:CompanyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt  time.Time
}

func (CompanySupplier) TableName() string { return "empresa_fornecedor" }

// NewCompany converts a domain company into a row.
func NewCompany(c *domain.Company) *Company {
	return &Company{
		ID:           c.ID,
		CNPJ:         c.CNPJ,
		NomeFantasia: c.NomeFantasia,
		CEP:          c.CEP,
		Estado:       c.Estado,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ToDomain converts the row into a domain company.
func (c *Company) ToDomain() *domain.Company {
	return &domain.Company{
		ID:           c.ID,
		CNPJ:         c.CNPJ,
		NomeFantasia: c.NomeFantasia,
		CEP:          c.CEP,
		Estado:       c.Estado,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// NewSupplier converts a domain supplier into a row.
func NewSupplier(s *domain.Supplier) *Supplier {
	row := &Supplier{
		ID:         s.ID,
		Nome:       s.Nome,
		CPFCNPJ:    s.CPFCNPJ,
		Email:      s.Email,
		CEP:        s.CEP,
		TipoPessoa: string(s.PersonType),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.RG != nil {
		rg := *s.RG
		row.RG = &rg
	}
	if s.BirthDate != nil {
		d := datatypes.Date(s.BirthDate.Time)
		row.DataNascimento = &d
	}
	return row
}

// ToDomain converts the row into a domain supplier.
func (s *Supplier) ToDomain() *domain.Supplier {
	out := &domain.Supplier{
		ID:         s.ID,
		Nome:       s.Nome,
		CPFCNPJ:    s.CPFCNPJ,
		Email:      s.Email,
		CEP:        s.CEP,
		PersonType: domain.PersonType(s.TipoPessoa),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.RG != nil {
		rg := *s.RG
		out.RG = &rg
	}
	if s.DataNascimento != nil {
		t := time.Time(*s.DataNascimento)
		d := domain.NewDate(t.Year(), t.Month(), t.Day())
		out.BirthDate = &d
	}
	return out
}

// ToDomain converts the row into a domain link.
func (l *CompanySupplier) ToDomain() *domain.Link {
	return &domain.Link{
		ID:         l.ID,
		CompanyID:  l.CompanyID,
		SupplierID: l.SupplierID,
		CreatedAt:  l.CreatedAt,
	}
}
