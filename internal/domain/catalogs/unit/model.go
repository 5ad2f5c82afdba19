// Package unit provides the MeasurementUnit catalog.
// Units are shared across products; product-scoped conversion factors
// live in the conversion package.
package unit

import (
	"context"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/entity"
)

// Unit represents a measurement unit (kg, crate, dozen, ...).
type Unit struct {
	entity.Catalog

	// Abbreviation is the short display form (e.g. "kg", "cj")
	Abbreviation string `db:"abbreviation" json:"abbreviation"`
}

// NewUnit creates a new Unit.
func NewUnit(name, abbreviation string) *Unit {
	return &Unit{
		Catalog:      entity.NewCatalog(name),
		Abbreviation: abbreviation,
	}
}

// Validate implements entity.Validatable.
func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}

	if u.Abbreviation == "" {
		return apperror.NewValidation("abbreviation is required").
			WithDetail("field", "abbreviation")
	}

	return nil
}
