package dto

import (
	"verduleria/internal/domain/catalogs/client"
	"verduleria/internal/domain/catalogs/product"
	"verduleria/internal/domain/catalogs/unit"
)

// --- Product ---

// ProductResponse is the API shape of a product.
type ProductResponse struct {
	CatalogResponse
	Supplier *string `json:"supplier,omitempty"`
}

// FromProduct maps a product entity to its response.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		CatalogResponse: CatalogResponse{
			ID:           p.ID,
			Name:         p.Name,
			DeletionMark: p.DeletionMark,
			Version:      p.Version,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		},
		Supplier: p.Supplier,
	}
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	Supplier *string `json:"supplier"`
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	Name     *string `json:"name"`
	Supplier *string `json:"supplier"`
}

// --- Unit ---

// UnitResponse is the API shape of a measurement unit.
type UnitResponse struct {
	CatalogResponse
	Abbreviation string `json:"abbreviation"`
}

// FromUnit maps a unit entity to its response.
func FromUnit(u *unit.Unit) UnitResponse {
	return UnitResponse{
		CatalogResponse: CatalogResponse{
			ID:           u.ID,
			Name:         u.Name,
			DeletionMark: u.DeletionMark,
			Version:      u.Version,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		},
		Abbreviation: u.Abbreviation,
	}
}

// CreateUnitRequest for creating units.
type CreateUnitRequest struct {
	Name         string `json:"name" binding:"required"`
	Abbreviation string `json:"abbreviation" binding:"required"`
}

// UpdateUnitRequest for updating units.
type UpdateUnitRequest struct {
	Name         *string `json:"name"`
	Abbreviation *string `json:"abbreviation"`
}

// --- Client ---

// ClientResponse is the API shape of a client.
type ClientResponse struct {
	CatalogResponse
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// FromClient maps a client entity to its response.
func FromClient(c *client.Client) ClientResponse {
	return ClientResponse{
		CatalogResponse: CatalogResponse{
			ID:           c.ID,
			Name:         c.Name,
			DeletionMark: c.DeletionMark,
			Version:      c.Version,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		},
		Phone:   c.Phone,
		Address: c.Address,
	}
}

// CreateClientRequest for creating clients.
type CreateClientRequest struct {
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateClientRequest for updating clients.
type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}
