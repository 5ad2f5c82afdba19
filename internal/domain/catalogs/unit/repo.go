package unit

import (
	"context"

	"verduleria/internal/domain"
)

// Repository defines the interface for Unit persistence.
type Repository interface {
	domain.CatalogRepository[*Unit]

	// FindByAbbreviation retrieves unit by its short form.
	FindByAbbreviation(ctx context.Context, abbreviation string) (*Unit, error)
}
