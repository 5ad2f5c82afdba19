package order

import (
	"context"
	"fmt"
	"time"

	"verduleria/internal/core/apperror"
	"verduleria/internal/core/tx"
	"verduleria/internal/core/types"
	"verduleria/internal/domain"
	"verduleria/pkg/logger"
	"verduleria/pkg/numerator"
)

// LineInput is one (productUnit, quantity) tuple, e.g. a row from the
// bulk-import pipeline, already validated upstream.
type LineInput struct {
	ProductUnitID int64
	Quantity      types.Quantity
}

// Service provides business operations for client orders.
type Service struct {
	repo      Repository
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new order service.
func NewService(repo Repository, num *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		txManager: txManager,
	}
}

// Create registers a pending order with its lines.
func (s *Service) Create(ctx context.Context, clientID int64, lines []LineInput) (*ClientOrder, error) {
	o := NewClientOrder(clientID)
	for _, in := range lines {
		o.AddLine(in.ProductUnitID, in.Quantity)
	}

	if err := o.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PE"), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	o.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, o.ID, o.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "client order created",
		"id", o.ID,
		"number", o.Number,
		"client_id", clientID,
		"lines", len(o.Lines))

	return o, nil
}

// GetByID retrieves an order with its lines.
func (s *Service) GetByID(ctx context.Context, id int64) (*ClientOrder, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("order", id)
		}
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	o.Lines = lines

	return o, nil
}

// List retrieves orders with filtering and pagination.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*ClientOrder], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
