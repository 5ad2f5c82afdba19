// Package client provides the Client catalog (greengrocers, restaurants, ...).
package client

import (
	"context"

	"verduleria/internal/core/entity"
)

// Client represents a buyer that places orders.
type Client struct {
	entity.Catalog

	// Phone is the contact number (optional)
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Address is the delivery address (optional)
	Address *string `db:"address" json:"address,omitempty"`
}

// NewClient creates a new Client.
func NewClient(name string) *Client {
	return &Client{
		Catalog: entity.NewCatalog(name),
	}
}

// Validate implements entity.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	return c.Catalog.Validate(ctx)
}
