package productunit

import (
	"context"
	"fmt"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/tx"
	"verduleria/internal/core/types"
	"verduleria/pkg/logger"
)

// Service provides business operations for ProductUnit bindings.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new ProductUnit service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// GetByID retrieves a binding by ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*ProductUnit, error) {
	pu, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product unit", id)
		}
		return nil, err
	}
	return pu, nil
}

// GetByProduct retrieves all bindings of a product.
func (s *Service) GetByProduct(ctx context.Context, productID int64) ([]*ProductUnit, error) {
	return s.repo.GetByProduct(ctx, productID)
}

// EnsureBinding returns the binding for (product, unit), creating it when
// absent. A freshly created binding gets default margin, zero stock, the sale
// flag, and the purchase flag only if the product has no purchase unit yet.
// Runs on the caller's transaction when one is active.
func (s *Service) EnsureBinding(ctx context.Context, productID, unitID int64) (*ProductUnit, error) {
	existing, err := s.repo.GetByProductAndUnit(ctx, productID, unitID)
	if err == nil {
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("lookup binding: %w", err)
	}

	pu := NewProductUnit(productID, unitID)

	hasPurchase, err := s.repo.HasPurchaseUnit(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check purchase unit: %w", err)
	}
	// First unit wins the purchase-unit flag
	pu.IsPurchaseUnit = !hasPurchase

	if err := s.repo.Create(ctx, pu); err != nil {
		return nil, fmt.Errorf("create binding: %w", err)
	}

	logger.Info(ctx, "product unit auto-created",
		"product_id", productID,
		"unit_id", unitID,
		"is_purchase_unit", pu.IsPurchaseUnit)

	return pu, nil
}

// SetMargin updates the sale margin of a binding.
func (s *Service) SetMargin(ctx context.Context, id int64, margin types.Money) error {
	if margin.IsNegative() {
		return apperror.NewValidation("margin cannot be negative").
			WithDetail("field", "margin")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pu, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		pu.Margin = margin
		pu.Touch()
		return s.repo.Update(ctx, pu)
	})
}

// DesignatePurchaseUnit flags a binding as the product's purchase unit.
// Fails with ConstraintViolation when a different binding already holds
// the flag; the flag must be released first.
func (s *Service) DesignatePurchaseUnit(ctx context.Context, id int64) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pu, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if pu.IsPurchaseUnit {
			return nil
		}

		siblings, err := s.repo.GetByProduct(ctx, pu.ProductID)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.IsPurchaseUnit && sibling.ID != pu.ID {
				return apperror.NewConstraintViolation("product already has a purchase unit").
					WithDetail("product_id", pu.ProductID).
					WithDetail("purchase_unit_id", sibling.ID)
			}
		}

		pu.IsPurchaseUnit = true
		pu.Touch()
		return s.repo.Update(ctx, pu)
	})
}

// ReleasePurchaseUnit clears the purchase-unit flag of a binding.
func (s *Service) ReleasePurchaseUnit(ctx context.Context, id int64) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pu, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !pu.IsPurchaseUnit {
			return nil
		}
		pu.IsPurchaseUnit = false
		pu.Touch()
		return s.repo.Update(ctx, pu)
	})
}

// AddStock increments a binding's stock under a row lock.
// Must run within the caller's transaction; only purchase confirmation
// calls this.
func (s *Service) AddStock(ctx context.Context, id int64, qty types.Quantity) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty.String())
	}

	pu, err := s.repo.GetForUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("lock product unit %d: %w", id, err)
	}

	return s.repo.UpdateStock(ctx, id, pu.Stock.Add(qty))
}

// SubtractStock decrements a binding's stock under a row lock.
// Must run within the caller's transaction; only delivery confirmation
// calls this.
func (s *Service) SubtractStock(ctx context.Context, id int64, qty types.Quantity) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty.String())
	}

	pu, err := s.repo.GetForUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("lock product unit %d: %w", id, err)
	}

	remaining := pu.Stock.Sub(qty)
	if remaining.IsNegative() {
		return apperror.NewInsufficientStock(id, qty.String(), pu.Stock.String())
	}

	return s.repo.UpdateStock(ctx, id, remaining)
}
