package purchaseorder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/tx"
	"verduleria/internal/core/types"
	"verduleria/internal/domain"
	"verduleria/internal/domain/order"
	"verduleria/internal/domain/pricehistory"
	"verduleria/internal/domain/suggestion"
	"verduleria/pkg/logger"
	"verduleria/pkg/numerator"
)

// PurchaseSpawner creates the purchase document for a confirmed purchase
// order. Implemented by the purchase service; declared here so this package
// does not import it.
type PurchaseSpawner interface {
	SpawnFromPurchaseOrder(ctx context.Context, po *PurchaseOrder) (int64, error)
}

// Service provides business operations for purchase orders.
type Service struct {
	repo      Repository
	orders    order.Repository
	suggester *suggestion.Service
	prices    pricehistory.Repository
	numerator *numerator.Service
	txManager tx.Manager
	spawner   PurchaseSpawner
	audit     domain.Auditor
}

// NewService creates a new purchase-order service. The spawner is attached
// afterward via SetSpawner because the purchase service is constructed later.
func NewService(
	repo Repository,
	orders order.Repository,
	suggester *suggestion.Service,
	prices pricehistory.Repository,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		suggester: suggester,
		prices:    prices,
		numerator: num,
		txManager: txManager,
	}
}

// SetSpawner wires the purchase side in after both services exist.
func (s *Service) SetSpawner(sp PurchaseSpawner) {
	s.spawner = sp
}

// SetAuditor attaches the audit log. Optional.
func (s *Service) SetAuditor(a domain.Auditor) {
	s.audit = a
}

func (s *Service) recordAudit(ctx context.Context, po *PurchaseOrder, action string, changes map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, "purchase_order", po.ID, action, changes); err != nil {
		logger.Warn(ctx, "audit record failed", "action", action, "id", po.ID, "error", err)
	}
}

// CreateFromDemand aggregates all pending demand into a draft purchase order.
// The pending orders the aggregation saw are swept into in_purchasing inside
// the same transaction, and their IDs are stored on the document so a later
// cancel reverts exactly them.
func (s *Service) CreateFromDemand(ctx context.Context) (*PurchaseOrder, error) {
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("OC"), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	po := NewPurchaseOrder()
	po.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		result, err := s.suggester.Aggregate(ctx)
		if err != nil {
			return fmt.Errorf("aggregate demand: %w", err)
		}
		if len(result.Suggestions) == 0 {
			return apperror.NewValidation("no pending demand to purchase")
		}

		puIDs := make([]int64, 0, len(result.Suggestions))
		for _, sug := range result.Suggestions {
			puIDs = append(puIDs, sug.ProductUnitID)
		}
		lastPrices, err := s.prices.LatestPurchasePrices(ctx, puIDs)
		if err != nil {
			return fmt.Errorf("load price history: %w", err)
		}

		for i, sug := range result.Suggestions {
			line := Line{
				LineID:        uuid.New(),
				LineNo:        i + 1,
				ProductUnitID: sug.ProductUnitID,
				SuggestedQty:  sug.SuggestedQty,
				Unresolved:    sug.Unresolved,
			}
			if price, ok := lastPrices[sug.ProductUnitID]; ok {
				line.EstimatedPrice = &price
			}
			po.Lines = append(po.Lines, line)
		}
		po.RecalculateEstimatedTotal()

		// Sweep the snapshot: only orders still pending flip; orders that
		// progressed since the read keep their state
		swept, err := s.orders.UpdateStatusBulk(ctx, result.OrderIDs,
			order.StatusPending, order.StatusInPurchasing)
		if err != nil {
			return fmt.Errorf("sweep orders: %w", err)
		}
		po.SweptOrderIDs = swept

		if err := po.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, po); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, po.ID, po.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		s.recordAudit(ctx, po, "create", map[string]any{
			"number":       po.Number,
			"lines":        len(po.Lines),
			"swept_orders": po.SweptOrderIDs,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order created from demand",
		"id", po.ID,
		"number", po.Number,
		"lines", len(po.Lines),
		"swept_orders", len(po.SweptOrderIDs))

	return po, nil
}

// GetByID retrieves a purchase order with its lines.
func (s *Service) GetByID(ctx context.Context, id int64) (*PurchaseOrder, error) {
	po, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase order", id)
		}
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	po.Lines = lines

	return po, nil
}

// GetPrintModel returns the printable rendition of a purchase order.
func (s *Service) GetPrintModel(ctx context.Context, id int64) (*PrintModel, error) {
	pm, err := s.repo.GetPrintModel(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase order", id)
		}
		return nil, err
	}
	return pm, nil
}

// List retrieves purchase orders.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*PurchaseOrder, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// UpdateLine changes a draft line's suggested quantity.
func (s *Service) UpdateLine(ctx context.Context, poID int64, lineID uuid.UUID, qty types.Quantity) (*PurchaseOrder, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive")
	}
	return s.editLines(ctx, poID, func(po *PurchaseOrder) error {
		for i := range po.Lines {
			if po.Lines[i].LineID == lineID {
				po.Lines[i].SuggestedQty = qty
				return nil
			}
		}
		return apperror.NewNotFound("purchase order line", lineID)
	})
}

// DeleteLine removes a line from a draft purchase order.
func (s *Service) DeleteLine(ctx context.Context, poID int64, lineID uuid.UUID) (*PurchaseOrder, error) {
	return s.editLines(ctx, poID, func(po *PurchaseOrder) error {
		for i := range po.Lines {
			if po.Lines[i].LineID == lineID {
				po.Lines = append(po.Lines[:i], po.Lines[i+1:]...)
				for j := range po.Lines {
					po.Lines[j].LineNo = j + 1
				}
				return nil
			}
		}
		return apperror.NewNotFound("purchase order line", lineID)
	})
}

// editLines loads the document, applies mutate, and saves lines and header
// in one transaction. Only draft documents are editable.
func (s *Service) editLines(ctx context.Context, poID int64, mutate func(*PurchaseOrder) error) (*PurchaseOrder, error) {
	var po *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		po, err = s.GetByID(ctx, poID)
		if err != nil {
			return err
		}
		if !po.Editable() {
			return apperror.NewInvalidState(
				fmt.Sprintf("purchase order in %s state cannot be edited", po.Status)).
				WithDetail("purchase_order_id", poID)
		}
		if err := mutate(po); err != nil {
			return err
		}
		po.RecalculateEstimatedTotal()
		po.Touch()

		if err := s.repo.SaveLines(ctx, po.ID, po.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// Confirm freezes the draft and spawns the purchase document.
func (s *Service) Confirm(ctx context.Context, id int64) (*PurchaseOrder, error) {
	if s.spawner == nil {
		return nil, apperror.NewInternal(fmt.Errorf("purchase spawner not wired"))
	}

	var po *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		po, err = s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := po.Confirm(); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}

		purchaseID, err := s.spawner.SpawnFromPurchaseOrder(ctx, po)
		if err != nil {
			return fmt.Errorf("spawn purchase: %w", err)
		}

		// Spawning moves the document straight into in_progress
		if err := po.MarkInProgress(); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}

		logger.Info(ctx, "purchase order confirmed",
			"id", po.ID,
			"number", po.Number,
			"purchase_id", purchaseID)

		s.recordAudit(ctx, po, "confirm", map[string]any{
			"number":      po.Number,
			"purchase_id": purchaseID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// Cancel aborts a draft or confirmed purchase order and returns its swept
// client orders to the pending pool. Orders that already progressed past
// in_purchasing are left untouched. An in-progress document must have its
// spawned purchase cancelled first, which returns it to confirmed.
func (s *Service) Cancel(ctx context.Context, id int64) (*PurchaseOrder, error) {
	var po *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		po, err = s.repo.GetByID(ctx, id)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("purchase order", id)
			}
			return err
		}
		if err := po.Cancel(); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}

		if len(po.SweptOrderIDs) > 0 {
			reverted, err := s.orders.UpdateStatusBulk(ctx, po.SweptOrderIDs,
				order.StatusInPurchasing, order.StatusPending)
			if err != nil {
				return fmt.Errorf("revert swept orders: %w", err)
			}
			logger.Info(ctx, "swept orders returned to pending",
				"purchase_order_id", po.ID,
				"reverted", len(reverted),
				"swept", len(po.SweptOrderIDs))
		}

		s.recordAudit(ctx, po, "cancel", map[string]any{"number": po.Number})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// --- Hooks for the purchase side ---
// The purchase service drives these as its own lifecycle advances.

// RecordPurchaseProgress sets the purchased quantities on matching lines and
// completes the document. Called when the spawned purchase is confirmed.
func (s *Service) RecordPurchaseProgress(ctx context.Context, poID int64, purchased map[int64]types.Quantity) error {
	po, err := s.GetByID(ctx, poID)
	if err != nil {
		return err
	}
	if err := po.MarkCompleted(); err != nil {
		return err
	}

	for i := range po.Lines {
		if qty, ok := purchased[po.Lines[i].ProductUnitID]; ok {
			q := qty
			if err := s.repo.UpdateLinePurchasedQty(ctx, po.Lines[i].LineID, &q); err != nil {
				return fmt.Errorf("record purchased qty: %w", err)
			}
		}
	}
	if err := s.repo.Update(ctx, po); err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return nil
}

// RevertPurchaseProgress clears purchased quantities and returns the
// document to confirmed. Called when the spawned purchase is cancelled,
// which is only possible while that purchase is pending.
func (s *Service) RevertPurchaseProgress(ctx context.Context, poID int64) error {
	po, err := s.GetByID(ctx, poID)
	if err != nil {
		return err
	}

	if err := po.RevertToConfirmed(); err != nil {
		return err
	}

	for i := range po.Lines {
		if po.Lines[i].PurchasedQty != nil {
			if err := s.repo.UpdateLinePurchasedQty(ctx, po.Lines[i].LineID, nil); err != nil {
				return fmt.Errorf("clear purchased qty: %w", err)
			}
		}
	}
	if err := s.repo.Update(ctx, po); err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return nil
}
