package models

import (
	"fmt"
	"strings"
	"time"
)

// PersonType tells whether a supplier is an individual or an organization.
type PersonType string

const (
	// Individual is a natural person (pessoa física).
	Individual PersonType = "PF"
	// Organization is a legal entity (pessoa jurídica).
	Organization PersonType = "PJ"
)

// Supplier is a registered supplier ("fornecedor").
type Supplier struct {
	ID int64 `json:"id"`
	// CPFCNPJ holds a CPF for individuals or a CNPJ for organizations.
	CPFCNPJ    string     `json:"cpfCnpj" validate:"required,max=14"`
	Nome       string     `json:"nome" validate:"required,max=150"`
	Email      string     `json:"email" validate:"required,max=150"`
	PersonType PersonType `json:"tipoPessoa" validate:"required,oneof=PF PJ"`
	// RG and BirthDate are mandatory for individuals.
	RG        *string   `json:"rg" validate:"omitempty,max=20"`
	BirthDate *Date     `json:"dataNascimento"`
	CEP       string    `json:"cep" validate:"required,len=8"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// SupplierUpdate carries a partial supplier update.
type SupplierUpdate struct {
	CPFCNPJ    *string     `json:"cpfCnpj"`
	Nome       *string     `json:"nome"`
	Email      *string     `json:"email"`
	PersonType *PersonType `json:"tipoPessoa"`
	RG         *string     `json:"rg"`
	BirthDate  *Date       `json:"dataNascimento"`
	CEP        *string     `json:"cep"`
}

// SupplierFilter narrows a supplier listing. Empty fields match everything.
type SupplierFilter struct {
	// Nome matches suppliers whose name contains it, ignoring case.
	Nome string
	// CPFCNPJ matches suppliers whose tax id contains it.
	CPFCNPJ string
}

// IsIndividual reports whether the supplier is a natural person.
func (s *Supplier) IsIndividual() bool {
	return s.PersonType == Individual
}

func (s *Supplier) Location() string {
	return fmt.Sprintf("/fornecedores/%d", s.ID)
}

// Apply merges the non-nil fields of u into s. The tax id is trimmed.
func (s *Supplier) Apply(u *SupplierUpdate) {
	if u == nil {
		return
	}
	if u.CPFCNPJ != nil {
		s.CPFCNPJ = strings.TrimSpace(*u.CPFCNPJ)
	}
	if u.Nome != nil {
		s.Nome = *u.Nome
	}
	if u.Email != nil {
		s.Email = *u.Email
	}
	if u.PersonType != nil {
		s.PersonType = *u.PersonType
	}
	if u.RG != nil {
		rg := *u.RG
		s.RG = &rg
	}
	if u.BirthDate != nil {
		d := *u.BirthDate
		s.BirthDate = &d
	}
	if u.CEP != nil {
		s.CEP = *u.CEP
	}
}
