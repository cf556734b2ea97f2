package models

import (
	"fmt"
	"time"
)

// Link associates a supplier with a company. A pair is linked at most once.
type Link struct {
	ID         int64     `json:"id"`
	CompanyID  int64     `json:"empresaId"`
	SupplierID int64     `json:"fornecedorId"`
	CreatedAt  time.Time `json:"criadoEm"`
}

// Location is the canonical resource path of the link.
func (l *Link) Location() string {
	return fmt.Sprintf("/empresas/%d/fornecedores/%d", l.CompanyID, l.SupplierID)
}
