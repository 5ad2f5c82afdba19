package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/tx"
	"verduleria/internal/core/types"
	"verduleria/internal/domain"
	"verduleria/internal/domain/pricehistory"
	"verduleria/internal/domain/purchaseorder"
	"verduleria/pkg/logger"
	"verduleria/pkg/numerator"
)

// Stock adds product-unit stock inside the caller's transaction.
// Implemented by the productunit service. Purchases only ever increase
// stock; decreases belong to delivery confirmation.
type Stock interface {
	AddStock(ctx context.Context, id int64, qty types.Quantity) error
}

// LineInput is one manual purchase line.
type LineInput struct {
	ProductUnitID int64
	Quantity      types.Quantity
	UnitPrice     types.Money
}

// Service provides business operations for purchases.
type Service struct {
	repo      Repository
	orders    *purchaseorder.Service
	stock     Stock
	prices    pricehistory.Repository
	numerator *numerator.Service
	txManager tx.Manager
	audit     domain.Auditor
}

// NewService creates a new purchase service.
func NewService(
	repo Repository,
	orders *purchaseorder.Service,
	stock Stock,
	prices pricehistory.Repository,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		stock:     stock,
		prices:    prices,
		numerator: num,
		txManager: txManager,
	}
}

// SetAuditor attaches the audit log. Optional.
func (s *Service) SetAuditor(a domain.Auditor) {
	s.audit = a
}

func (s *Service) recordAudit(ctx context.Context, p *Purchase, action string, changes map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, "purchase", p.ID, action, changes); err != nil {
		logger.Warn(ctx, "audit record failed", "action", action, "id", p.ID, "error", err)
	}
}

// SpawnFromPurchaseOrder implements purchaseorder.PurchaseSpawner: it creates
// the pending purchase mirroring the order's lines, priced from the order's
// estimates. Runs inside the purchase-order confirmation transaction.
func (s *Service) SpawnFromPurchaseOrder(ctx context.Context, po *purchaseorder.PurchaseOrder) (int64, error) {
	if existing, err := s.repo.GetByPurchaseOrder(ctx, po.ID); err == nil {
		return 0, apperror.NewConflict("purchase order already has a purchase").
			WithDetail("purchase_id", existing.ID)
	} else if !apperror.IsNotFound(err) {
		return 0, fmt.Errorf("check existing purchase: %w", err)
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CP"), nil, time.Now())
	if err != nil {
		return 0, fmt.Errorf("generate number: %w", err)
	}

	p := NewPurchase()
	p.Number = number
	poID := po.ID
	p.PurchaseOrderID = &poID
	for _, line := range po.Lines {
		price := decimal.Zero
		if line.EstimatedPrice != nil {
			price = *line.EstimatedPrice
		}
		p.AddLine(line.ProductUnitID, line.SuggestedQty, price)
	}

	if err := p.Validate(ctx); err != nil {
		return 0, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return 0, fmt.Errorf("create purchase: %w", err)
	}
	if err := s.repo.SaveLines(ctx, p.ID, p.Lines); err != nil {
		return 0, fmt.Errorf("save lines: %w", err)
	}

	logger.Info(ctx, "purchase spawned",
		"id", p.ID,
		"number", p.Number,
		"purchase_order_id", po.ID)

	return p.ID, nil
}

// CreateManual registers a standalone purchase not driven by demand.
func (s *Service) CreateManual(ctx context.Context, lines []LineInput) (*Purchase, error) {
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CP"), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	p := NewPurchase()
	p.Number = number
	for _, in := range lines {
		p.AddLine(in.ProductUnitID, in.Quantity, in.UnitPrice)
	}
	if len(p.Lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required")
	}
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.repo.SaveLines(ctx, p.ID, p.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "manual purchase created",
		"id", p.ID,
		"number", p.Number,
		"lines", len(p.Lines))

	return p, nil
}

// GetByID retrieves a purchase with its lines.
func (s *Service) GetByID(ctx context.Context, id int64) (*Purchase, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase", id)
		}
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	p.Lines = lines

	return p, nil
}

// List retrieves purchases.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Purchase, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// UpdateLine adjusts a pending line's real quantity and price.
func (s *Service) UpdateLine(ctx context.Context, purchaseID int64, lineID uuid.UUID, qty types.Quantity, price types.Money) (*Purchase, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive")
	}
	if price.IsNegative() {
		return nil, apperror.NewValidation("unit price cannot be negative")
	}
	return s.editLines(ctx, purchaseID, func(p *Purchase) error {
		for i := range p.Lines {
			if p.Lines[i].LineID == lineID {
				p.Lines[i].Quantity = qty
				p.Lines[i].UnitPrice = price
				return nil
			}
		}
		return apperror.NewNotFound("purchase line", lineID)
	})
}

// DeleteLine removes a line from a pending purchase.
func (s *Service) DeleteLine(ctx context.Context, purchaseID int64, lineID uuid.UUID) (*Purchase, error) {
	return s.editLines(ctx, purchaseID, func(p *Purchase) error {
		for i := range p.Lines {
			if p.Lines[i].LineID == lineID {
				p.Lines = append(p.Lines[:i], p.Lines[i+1:]...)
				for j := range p.Lines {
					p.Lines[j].LineNo = j + 1
				}
				return nil
			}
		}
		return apperror.NewNotFound("purchase line", lineID)
	})
}

func (s *Service) editLines(ctx context.Context, purchaseID int64, mutate func(*Purchase) error) (*Purchase, error) {
	var p *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.GetByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		if !p.Editable() {
			return apperror.NewInvalidState(
				fmt.Sprintf("purchase in %s state cannot be edited", p.Status)).
				WithDetail("purchase_id", purchaseID)
		}
		if err := mutate(p); err != nil {
			return err
		}
		p.RecalculateTotal()
		p.Touch()

		if err := s.repo.SaveLines(ctx, p.ID, p.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Confirm fixes the purchase: every line adds stock to its product unit and
// writes a cost row to the purchase price history; a linked purchase order
// records the real quantities and completes. All of it in one transaction.
func (s *Service) Confirm(ctx context.Context, id int64) (*Purchase, error) {
	var p *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Confirm(); err != nil {
			return err
		}
		p.RecalculateTotal()

		for _, line := range p.Lines {
			if err := s.stock.AddStock(ctx, line.ProductUnitID, line.Quantity); err != nil {
				return fmt.Errorf("add stock for unit %d: %w", line.ProductUnitID, err)
			}
			if err := s.prices.AddPurchasePrice(ctx, line.ProductUnitID, p.ID, line.UnitPrice); err != nil {
				return fmt.Errorf("record purchase price: %w", err)
			}
		}

		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}

		if p.PurchaseOrderID != nil {
			purchased := make(map[int64]types.Quantity, len(p.Lines))
			for _, line := range p.Lines {
				purchased[line.ProductUnitID] = line.Quantity
			}
			if err := s.orders.RecordPurchaseProgress(ctx, *p.PurchaseOrderID, purchased); err != nil {
				return fmt.Errorf("complete purchase order: %w", err)
			}
		}

		s.recordAudit(ctx, p, "confirm", map[string]any{
			"number": p.Number,
			"total":  p.TotalReal.String(),
			"lines":  len(p.Lines),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase confirmed",
		"id", p.ID,
		"number", p.Number,
		"total", p.TotalReal.String())

	return p, nil
}

// Cancel aborts a pending purchase; stock and cost history stay untouched.
// A linked purchase order returns to confirmed with its purchased
// quantities cleared.
func (s *Service) Cancel(ctx context.Context, id int64) (*Purchase, error) {
	var p *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Cancel(); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}

		if p.PurchaseOrderID != nil {
			if err := s.orders.RevertPurchaseProgress(ctx, *p.PurchaseOrderID); err != nil {
				return fmt.Errorf("revert purchase order: %w", err)
			}
		}

		s.recordAudit(ctx, p, "cancel", map[string]any{"number": p.Number})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase cancelled", "id", p.ID, "number", p.Number)

	return p, nil
}
