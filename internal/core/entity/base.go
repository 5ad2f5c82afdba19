package entity

import (
	"context"
	"time"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Identifiable is implemented by entities exposing a database identity.
// Repositories use it to assign BIGSERIAL ids after insert.
type Identifiable interface {
	GetID() int64
	SetID(int64)
}

// BaseEntity contains common fields for all persisted entities.
type BaseEntity struct {
	// ID is the primary key (BIGSERIAL, assigned by the database on insert)
	ID int64 `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	// Audit timestamps
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a BaseEntity with fresh audit timestamps.
// The ID stays zero until the repository inserts the row.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID implements Identifiable.
func (b *BaseEntity) GetID() int64 { return b.ID }

// SetID implements Identifiable.
func (b *BaseEntity) SetID(id int64) { b.ID = id }

// Touch updates the UpdatedAt timestamp and increments version.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// SetVersion updates the version number (used by repository after sync).
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}
