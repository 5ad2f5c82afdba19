package product

import (
	"context"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/tx"
	"verduleria/internal/domain"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkNameUnique)
	base.Hooks().OnBeforeUpdate(svc.checkNameUnique)

	return svc
}

// checkNameUnique enforces the unique-name constraint ahead of the DB index
// so callers get a structured conflict instead of a raw constraint error.
func (s *Service) checkNameUnique(ctx context.Context, p *Product) error {
	existing, err := s.repo.FindByName(ctx, p.Name)
	if err != nil {
		return nil
	}
	if existing.ID != p.ID {
		return apperror.NewConflict("product with this name already exists").
			WithDetail("name", p.Name)
	}
	return nil
}
