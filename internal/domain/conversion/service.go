package conversion

import (
	"context"
	"fmt"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/tx"
	"verduleria/internal/core/types"
	"verduleria/internal/domain/productunit"
	"verduleria/pkg/logger"
)

// Bindings is the slice of productunit.Service the graph needs: auto-creating
// ProductUnit rows for the units a new conversion touches.
type Bindings interface {
	EnsureBinding(ctx context.Context, productID, unitID int64) (*productunit.ProductUnit, error)
}

// Service maintains the conversion graph and answers conversion queries.
type Service struct {
	repo      Repository
	bindings  Bindings
	txManager tx.Manager
}

// NewService creates a new conversion service.
func NewService(repo Repository, bindings Bindings, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		bindings:  bindings,
		txManager: txManager,
	}
}

// Create inserts a conversion edge together with its inverse.
// Side effect: ensures ProductUnit rows exist for both (product, unit) pairs,
// origin first, so the origin unit wins the purchase-unit flag on a product
// that has none.
func (s *Service) Create(ctx context.Context, productID, originUnitID, destUnitID int64, factor types.Quantity) (*Conversion, error) {
	edge := NewConversion(productID, originUnitID, destUnitID, factor)
	if err := edge.Validate(ctx); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetEdge(ctx, productID, originUnitID, destUnitID); err == nil {
		return nil, apperror.NewDuplicateConversion(productID, originUnitID, destUnitID)
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("check duplicate edge: %w", err)
	}

	inverse := NewConversion(productID, destUnitID, originUnitID, edge.InverseFactor())

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.bindings.EnsureBinding(ctx, productID, originUnitID); err != nil {
			return fmt.Errorf("ensure origin binding: %w", err)
		}
		if _, err := s.bindings.EnsureBinding(ctx, productID, destUnitID); err != nil {
			return fmt.Errorf("ensure destination binding: %w", err)
		}

		if err := s.repo.Create(ctx, edge); err != nil {
			return fmt.Errorf("create edge: %w", err)
		}
		if err := s.repo.Create(ctx, inverse); err != nil {
			return fmt.Errorf("create inverse edge: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "conversion created",
		"product_id", productID,
		"origin_unit_id", originUnitID,
		"dest_unit_id", destUnitID,
		"factor", factor.String())

	return edge, nil
}

// Update rewrites an edge's factor and its inverse's factor atomically.
// The identifying triple (product, origin, destination) is immutable.
func (s *Service) Update(ctx context.Context, id int64, factor types.Quantity) error {
	if !factor.IsPositive() {
		return apperror.NewValidation("factor must be positive").
			WithDetail("factor", factor.String())
	}

	edge, err := s.getEdge(ctx, id)
	if err != nil {
		return err
	}

	inverse, err := s.repo.GetEdge(ctx, edge.ProductID, edge.DestUnitID, edge.OriginUnitID)
	if err != nil {
		return fmt.Errorf("load inverse edge: %w", err)
	}

	edge.Factor = factor

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateFactor(ctx, edge.ID, factor.String()); err != nil {
			return fmt.Errorf("update edge: %w", err)
		}
		if err := s.repo.UpdateFactor(ctx, inverse.ID, edge.InverseFactor().String()); err != nil {
			return fmt.Errorf("update inverse edge: %w", err)
		}
		return nil
	})
}

// Delete removes an edge and its inverse atomically.
func (s *Service) Delete(ctx context.Context, id int64) error {
	edge, err := s.getEdge(ctx, id)
	if err != nil {
		return err
	}

	inverse, err := s.repo.GetEdge(ctx, edge.ProductID, edge.DestUnitID, edge.OriginUnitID)
	if err != nil {
		return fmt.Errorf("load inverse edge: %w", err)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, edge.ID); err != nil {
			return fmt.Errorf("delete edge: %w", err)
		}
		if err := s.repo.Delete(ctx, inverse.ID); err != nil {
			return fmt.Errorf("delete inverse edge: %w", err)
		}
		return nil
	})
}

// Convert translates a quantity between two units of a product.
// The inverse is a stored row, so a single direct lookup covers every pair
// the graph knows about.
func (s *Service) Convert(ctx context.Context, productID int64, qty types.Quantity, originUnitID, destUnitID int64) (types.Quantity, error) {
	if originUnitID == destUnitID {
		return qty, nil
	}

	edge, err := s.repo.GetEdge(ctx, productID, originUnitID, destUnitID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return types.Zero(), apperror.NewNoConversionFound(productID, originUnitID, destUnitID)
		}
		return types.Zero(), fmt.Errorf("lookup edge: %w", err)
	}

	return edge.Apply(qty), nil
}

// ListByProduct retrieves all edges of a product.
func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]*Conversion, error) {
	return s.repo.ListByProduct(ctx, productID)
}

func (s *Service) getEdge(ctx context.Context, id int64) (*Conversion, error) {
	edge, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("conversion", id)
		}
		return nil, err
	}
	return edge, nil
}
