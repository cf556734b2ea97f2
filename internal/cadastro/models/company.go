// Package models defines the domain models for companies, suppliers
// and the links between them, along with their JSON representation.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Company is a registered company ("empresa").
type Company struct {
	// ID is generated by the store on creation.
	ID int64 `json:"id"`
	// CNPJ is the 14 digit company tax id, unique across companies.
	CNPJ         string    `json:"cnpj" validate:"required,len=14,number"`
	NomeFantasia string    `json:"nomeFantasia" validate:"required,max=150"`
	CEP          string    `json:"cep" validate:"required,len=8"`
	Estado       string    `json:"estado" validate:"required,len=2"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// CompanyUpdate carries a partial company update.
// A nil field leaves the stored value untouched.
type CompanyUpdate struct {
	CNPJ         *string `json:"cnpj"`
	NomeFantasia *string `json:"nomeFantasia"`
	CEP          *string `json:"cep"`
	Estado       *string `json:"estado"`
}

// Location is the canonical resource path of the company.
func (c *Company) Location() string {
	return fmt.Sprintf("/empresas/%d", c.ID)
}

// Apply merges the non-nil fields of u into c. The tax id is trimmed.
func (c *Company) Apply(u *CompanyUpdate) {
	if u == nil {
		return
	}
	if u.CNPJ != nil {
		c.CNPJ = strings.TrimSpace(*u.CNPJ)
	}
	if u.NomeFantasia != nil {
		c.NomeFantasia = *u.NomeFantasia
	}
	if u.CEP != nil {
		c.CEP = *u.CEP
	}
	if u.Estado != nil {
		c.Estado = *u.Estado
	}
}
