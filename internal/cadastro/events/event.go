package events

import (
	"fmt"
	"time"

	"github.com/gartstein/cadastro/internal/cadastro/models"
	"github.com/google/uuid"
)

type EventType string

const (
	CompanyCreated   EventType = "company_created"
	CompanyUpdated   EventType = "company_updated"
	CompanyDeleted   EventType = "company_deleted"
	SupplierCreated  EventType = "supplier_created"
	SupplierUpdated  EventType = "supplier_updated"
	SupplierDeleted  EventType = "supplier_deleted"
	SupplierLinked   EventType = "supplier_linked"
	SupplierUnlinked EventType = "supplier_unlinked"
)

// Event is the message published after a successful write. Exactly one
// of Company, Supplier or Link is set.
type Event struct {
	ID         uuid.UUID        `json:"id"`
	Type       EventType        `json:"type"`
	OccurredAt time.Time        `json:"occurredAt"`
	Company    *models.Company  `json:"empresa,omitempty"`
	Supplier   *models.Supplier `json:"fornecedor,omitempty"`
	Link       *models.Link     `json:"vinculo,omitempty"`
}

func CompanyEvent(t EventType, c *models.Company) Event {
	return Event{ID: uuid.New(), Type: t, OccurredAt: time.Now().UTC(), Company: c}
}

func SupplierEvent(t EventType, s *models.Supplier) Event {
	return Event{ID: uuid.New(), Type: t, OccurredAt: time.Now().UTC(), Supplier: s}
}

func LinkEvent(t EventType, l *models.Link) Event {
	return Event{ID: uuid.New(), Type: t, OccurredAt: time.Now().UTC(), Link: l}
}

// Key is the partition key. Link events share the key of their company
// so that they are ordered with the company's own events.
func (e Event) Key() string {
	switch {
	case e.Company != nil:
		return fmt.Sprintf("empresa:%d", e.Company.ID)
	case e.Link != nil:
		return fmt.Sprintf("empresa:%d", e.Link.CompanyID)
	case e.Supplier != nil:
		return fmt.Sprintf("fornecedor:%d", e.Supplier.ID)
	default:
		return e.ID.String()
	}
}
