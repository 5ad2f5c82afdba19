package client

import (
	"context"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/tx"
	"verduleria/internal/domain"
)

// Service provides business logic for the Client catalog.
type Service struct {
	*domain.CatalogService[*Client]
	repo Repository
}

// NewService creates a new Client service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Client]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "client",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkNameUnique)

	return svc
}

func (s *Service) checkNameUnique(ctx context.Context, c *Client) error {
	existing, err := s.repo.FindByName(ctx, c.Name)
	if err != nil {
		return nil
	}
	if existing.ID != c.ID {
		return apperror.NewConflict("client with this name already exists").
			WithDetail("name", c.Name)
	}
	return nil
}
