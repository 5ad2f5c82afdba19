// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"verduleria/internal/core/entity"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs substring search on the catalog's searchable fields
	Search string

	// IDs filters by specific IDs
	IDs []int64

	// IncludeDeleted includes soft-deleted records
	IncludeDeleted bool

	// OrderBy specifies sorting (e.g., "name", "created_at DESC")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Audit ---

// Auditor records document lifecycle transitions. Implementations write on
// the active transaction when one is present, so a rolled-back operation
// leaves no trace.
type Auditor interface {
	Record(ctx context.Context, entityType string, entityID int64, action string, changes map[string]any) error
}

// --- Repository Interfaces ---

// CatalogRepository defines CRUD operations for catalog entities.
type CatalogRepository[T entity.Validatable] interface {
	// Create inserts a new entity and assigns its generated ID
	Create(ctx context.Context, entity T) error

	// GetByID retrieves entity by ID
	GetByID(ctx context.Context, id int64) (T, error)

	// FindByName retrieves entity by its unique name
	FindByName(ctx context.Context, name string) (T, error)

	// Update modifies existing entity (with optimistic locking)
	Update(ctx context.Context, entity T) error

	// SetDeletionMark sets or clears the soft-delete mark
	SetDeletionMark(ctx context.Context, id int64, marked bool) error

	// List retrieves entities with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// Exists checks if entity with given ID exists
	Exists(ctx context.Context, id int64) (bool, error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	BeforeDelete HookEvent = "before_delete"
	AfterDelete  HookEvent = "after_delete"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for an event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// OnBeforeCreate registers a before-create hook.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) { r.On(BeforeCreate, hook) }

// OnAfterCreate registers an after-create hook.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) { r.On(AfterCreate, hook) }

// OnBeforeUpdate registers a before-update hook.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) { r.On(BeforeUpdate, hook) }

// OnAfterUpdate registers an after-update hook.
func (r *HookRegistry[T]) OnAfterUpdate(hook Hook[T]) { r.On(AfterUpdate, hook) }

// OnBeforeDelete registers a before-delete hook.
func (r *HookRegistry[T]) OnBeforeDelete(hook Hook[T]) { r.On(BeforeDelete, hook) }

// Run executes all hooks registered for an event.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// RunBeforeCreate executes before-create hooks.
func (r *HookRegistry[T]) RunBeforeCreate(ctx context.Context, e T) error {
	return r.Run(ctx, BeforeCreate, e)
}

// RunAfterCreate executes after-create hooks.
func (r *HookRegistry[T]) RunAfterCreate(ctx context.Context, e T) error {
	return r.Run(ctx, AfterCreate, e)
}

// RunBeforeUpdate executes before-update hooks.
func (r *HookRegistry[T]) RunBeforeUpdate(ctx context.Context, e T) error {
	return r.Run(ctx, BeforeUpdate, e)
}

// RunAfterUpdate executes after-update hooks.
func (r *HookRegistry[T]) RunAfterUpdate(ctx context.Context, e T) error {
	return r.Run(ctx, AfterUpdate, e)
}

// RunBeforeDelete executes before-delete hooks.
func (r *HookRegistry[T]) RunBeforeDelete(ctx context.Context, e T) error {
	return r.Run(ctx, BeforeDelete, e)
}
