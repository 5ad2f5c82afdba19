package deliverynote

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
	"verduleria/internal/domain/order"
	"verduleria/internal/domain/pricehistory"
	"verduleria/internal/domain/productunit"
	"verduleria/pkg/logger"
	"verduleria/pkg/numerator"
)

// Stock mutates product-unit stock inside the caller's transaction.
type Stock interface {
	SubtractStock(ctx context.Context, id int64, qty types.Quantity) error
}

// LinePrice fixes the price of one order line on note creation.
type LinePrice struct {
	OrderLineID uuid.UUID
	UnitPrice   types.Money
}

// Service provides business operations for delivery notes.
type Service struct {
	repo      Repository
	orders    order.Repository
	bindings  productunit.Repository
	stock     Stock
	prices    pricehistory.Repository
	numerator *numerator.Service
	txManager tx.Manager
	audit     domain.Auditor
}

// NewService creates a new delivery-note service.
func NewService(
	repo Repository,
	orders order.Repository,
	bindings productunit.Repository,
	stock Stock,
	prices pricehistory.Repository,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		bindings:  bindings,
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

func (s *Service) recordAudit(ctx context.Context, dn *DeliveryNote, action string, changes map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, "delivery_note", dn.ID, action, changes); err != nil {
		logger.Warn(ctx, "audit record failed", "action", action, "id", dn.ID, "error", err)
	}
}

// SuggestedPrices computes the pricing aid for an order: per line the latest
// cost, the margin-derived suggestion and the last price this client paid.
func (s *Service) SuggestedPrices(ctx context.Context, orderID int64) ([]SuggestedPrice, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, err
	}
	lines, err := s.orders.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}

	puIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		puIDs = append(puIDs, line.ProductUnitID)
	}
	bindings, err := s.bindings.GetByIDs(ctx, puIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve product units: %w", err)
	}
	byID := make(map[int64]*productunit.ProductUnit, len(bindings))
	for _, pu := range bindings {
		byID[pu.ID] = pu
	}
	costs, err := s.prices.LatestPurchasePrices(ctx, puIDs)
	if err != nil {
		return nil, fmt.Errorf("load cost history: %w", err)
	}

	hundred := decimal.NewFromInt(100)
	out := make([]SuggestedPrice, 0, len(lines))
	for _, line := range lines {
		sp := SuggestedPrice{
			OrderLineID:   line.LineID,
			ProductUnitID: line.ProductUnitID,
			Quantity:      line.Quantity,
		}
		// Units with no purchase history price from a zero cost basis.
		cost := types.Zero()
		if c, ok := costs[line.ProductUnitID]; ok {
			cost = c
		}
		sp.LastCost = cost
		margin := productunit.DefaultMargin
		if pu, ok := byID[line.ProductUnitID]; ok {
			margin = pu.MarginOrDefault()
		}
		sp.Suggested = types.RoundMoney(cost.Mul(hundred.Add(margin)).Div(hundred))
		if last, err := s.prices.LatestClientPrice(ctx, o.ClientID, line.ProductUnitID, 0); err == nil {
			l := last
			sp.LastClientPrice = &l
		} else if !apperror.IsNotFound(err) {
			return nil, fmt.Errorf("load client price: %w", err)
		}
		out = append(out, sp)
	}
	return out, nil
}

// Create issues the note for an order: prices are written onto the order
// lines, recorded in the client price history, and the order moves to
// in_progress. One note per order.
func (s *Service) Create(ctx context.Context, orderID int64, prices []LinePrice) (*DeliveryNote, error) {
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("RM"), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	priceByLine := make(map[uuid.UUID]types.Money, len(prices))
	for _, lp := range prices {
		if lp.UnitPrice.IsNegative() {
			return nil, apperror.NewValidation("unit price cannot be negative").
				WithDetail("orderLineId", lp.OrderLineID)
		}
		priceByLine[lp.OrderLineID] = lp.UnitPrice
	}

	var dn *DeliveryNote
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if existing, err := s.repo.GetByOrder(ctx, orderID); err == nil {
			return apperror.NewInvalidState("order already has a delivery note").
				WithDetail("order_id", orderID).
				WithDetail("delivery_note_id", existing.ID)
		} else if !apperror.IsNotFound(err) {
			return fmt.Errorf("check existing note: %w", err)
		}

		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("order", orderID)
			}
			return err
		}
		o.Lines, err = s.orders.GetLines(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get order lines: %w", err)
		}

		dn = NewDeliveryNote(orderID, o.ClientID)
		dn.Number = number
		for i := range o.Lines {
			ol := &o.Lines[i]
			price, ok := priceByLine[ol.LineID]
			if !ok {
				return apperror.NewValidation("every order line must be priced").
					WithDetail("orderLineId", ol.LineID)
			}
			dn.Lines = append(dn.Lines, Line{
				LineID:        uuid.New(),
				OrderLineID:   ol.LineID,
				LineNo:        len(dn.Lines) + 1,
				ProductUnitID: ol.ProductUnitID,
				Quantity:      ol.Quantity,
				UnitPrice:     price,
			})
			p := price
			ol.UnitPrice = &p
		}
		dn.RecalculateTotal()
		if err := dn.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, dn); err != nil {
			return fmt.Errorf("create delivery note: %w", err)
		}
		if err := s.repo.SaveLines(ctx, dn.ID, dn.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		for _, line := range dn.Lines {
			if err := s.prices.AddClientPrice(ctx, o.ClientID, line.ProductUnitID, dn.ID, line.UnitPrice); err != nil {
				return fmt.Errorf("record client price: %w", err)
			}
		}

		// Fix the prices on the order itself
		o.RecalculateTotal()
		if err := o.MarkInProgress(); err != nil {
			return err
		}
		if err := s.orders.SaveLines(ctx, o.ID, o.Lines); err != nil {
			return fmt.Errorf("save order lines: %w", err)
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		s.recordAudit(ctx, dn, "create", map[string]any{
			"number":   dn.Number,
			"order_id": orderID,
			"total":    dn.Total.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "delivery note created",
		"id", dn.ID,
		"number", dn.Number,
		"order_id", orderID,
		"total", dn.Total.String())

	return dn, nil
}

// GetByID retrieves a note with its lines.
func (s *Service) GetByID(ctx context.Context, id int64) (*DeliveryNote, error) {
	dn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("delivery note", id)
		}
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	dn.Lines = lines
	return dn, nil
}

// ConfirmDelivery records the physical delivery: every line subtracts its
// quantity from stock and the order completes.
func (s *Service) ConfirmDelivery(ctx context.Context, id int64) (*DeliveryNote, error) {
	var dn *DeliveryNote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		dn, err = s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := dn.MarkDelivered(); err != nil {
			return err
		}

		for _, line := range dn.Lines {
			if err := s.stock.SubtractStock(ctx, line.ProductUnitID, line.Quantity); err != nil {
				return fmt.Errorf("subtract stock for unit %d: %w", line.ProductUnitID, err)
			}
		}

		if err := s.repo.Update(ctx, dn); err != nil {
			return fmt.Errorf("update delivery note: %w", err)
		}

		o, err := s.orders.GetByID(ctx, dn.OrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if err := o.MarkCompleted(); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		s.recordAudit(ctx, dn, "deliver", map[string]any{"number": dn.Number})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "delivery confirmed",
		"id", dn.ID,
		"number", dn.Number,
		"order_id", dn.OrderID)

	return dn, nil
}

// Void annuls an undelivered note: its client price rows are removed, the
// order's line prices are cleared and the order returns to pending.
func (s *Service) Void(ctx context.Context, id int64) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		dn, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if dn.Delivered {
			return apperror.NewInvalidState("delivered note cannot be voided").
				WithDetail("delivery_note_id", id)
		}

		if err := s.prices.DeleteByDeliveryNote(ctx, dn.ID); err != nil {
			return fmt.Errorf("delete client prices: %w", err)
		}

		o, err := s.orders.GetByID(ctx, dn.OrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		o.Lines, err = s.orders.GetLines(ctx, dn.OrderID)
		if err != nil {
			return fmt.Errorf("get order lines: %w", err)
		}
		for i := range o.Lines {
			o.Lines[i].UnitPrice = nil
			o.Lines[i].Subtotal = nil
		}
		o.RecalculateTotal()
		if err := o.RevertToPending(); err != nil {
			return err
		}
		if err := s.orders.SaveLines(ctx, o.ID, o.Lines); err != nil {
			return fmt.Errorf("save order lines: %w", err)
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if err := s.repo.Delete(ctx, dn.ID); err != nil {
			return fmt.Errorf("delete delivery note: %w", err)
		}

		s.recordAudit(ctx, dn, "void", map[string]any{"number": dn.Number})
		logger.Info(ctx, "delivery note voided",
			"id", dn.ID,
			"number", dn.Number,
			"order_id", dn.OrderID)
		return nil
	})
	return err
}

// GetPrintModel returns the printable rendition of a note.
func (s *Service) GetPrintModel(ctx context.Context, id int64) (*PrintModel, error) {
	pm, err := s.repo.GetPrintModel(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("delivery note", id)
		}
		return nil, err
	}
	return pm, nil
}

// List retrieves delivery notes.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*DeliveryNote, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}
