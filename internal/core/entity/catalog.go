package entity

import (
	"context"

	"verduleria/internal/core/apperror"
)

// Catalog is the base type for reference data: products, units, clients.
type Catalog struct {
	BaseEntity

	// Name is the display name (unique per catalog)
	Name string `db:"name" json:"name"`

	// DeletionMark indicates a soft-deleted entry
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`
}

// NewCatalog creates a new Catalog.
func NewCatalog(name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Name:       name,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// MarkDeleted sets the deletion mark.
func (c *Catalog) MarkDeleted() {
	c.DeletionMark = true
	c.Touch()
}

// Undelete clears the deletion mark.
func (c *Catalog) Undelete() {
	c.DeletionMark = false
	c.Touch()
}
