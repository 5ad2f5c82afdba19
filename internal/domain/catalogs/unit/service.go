package unit

import (
	"context"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/tx"
	"verduleria/internal/domain"
)

// Service provides business logic for the Unit catalog.
type Service struct {
	*domain.CatalogService[*Unit]
	repo Repository
}

// NewService creates a new Unit service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "unit",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkNameUnique)
	base.Hooks().OnBeforeUpdate(svc.checkNameUnique)

	return svc
}

func (s *Service) checkNameUnique(ctx context.Context, u *Unit) error {
	existing, err := s.repo.FindByName(ctx, u.Name)
	if err != nil {
		return nil
	}
	if existing.ID != u.ID {
		return apperror.NewConflict("unit with this name already exists").
			WithDetail("name", u.Name)
	}
	return nil
}

// FindByAbbreviation retrieves unit by its short form.
func (s *Service) FindByAbbreviation(ctx context.Context, abbreviation string) (*Unit, error) {
	u, err := s.repo.FindByAbbreviation(ctx, abbreviation)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("unit", abbreviation)
		}
		return nil, err
	}
	return u, nil
}
