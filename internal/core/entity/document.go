package entity

import (
	"time"
)

// Document is the base type for dated, numbered business documents:
// client orders, purchase orders, purchases, delivery notes.
type Document struct {
	BaseEntity

	// Number is the human-readable document number (e.g. "PO-2026-00042")
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`
}

// NewDocument creates a Document dated now.
func NewDocument() Document {
	return Document{
		BaseEntity: NewBaseEntity(),
		Date:       time.Now().UTC(),
	}
}
