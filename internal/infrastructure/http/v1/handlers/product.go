package handlers

import (
	"verduleria/internal/domain/catalogs/product"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service:    service.CatalogService,
			EntityName: "product",
			MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
				p := product.NewProduct(req.Name)
				p.Supplier = req.Supplier
				return p
			},
			MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
				if req.Name != nil {
					existing.Name = *req.Name
				}
				if req.Supplier != nil {
					existing.Supplier = req.Supplier
				}
				return existing
			},
			MapToDTO: func(p *product.Product) any {
				return dto.FromProduct(p)
			},
		}),
	}
}
