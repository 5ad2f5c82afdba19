package handlers

import (
	"verduleria/internal/domain/catalogs/unit"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// UnitHandler handles measurement-unit catalog endpoints.
type UnitHandler struct {
	*CatalogHandler[*unit.Unit, dto.CreateUnitRequest, dto.UpdateUnitRequest]
}

// NewUnitHandler creates a unit handler.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHandler {
	return &UnitHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*unit.Unit, dto.CreateUnitRequest, dto.UpdateUnitRequest]{
			Service:    service.CatalogService,
			EntityName: "unit",
			MapCreateDTO: func(req dto.CreateUnitRequest) *unit.Unit {
				return unit.NewUnit(req.Name, req.Abbreviation)
			},
			MapUpdateDTO: func(req dto.UpdateUnitRequest, existing *unit.Unit) *unit.Unit {
				if req.Name != nil {
					existing.Name = *req.Name
				}
				if req.Abbreviation != nil {
					existing.Abbreviation = *req.Abbreviation
				}
				return existing
			},
			MapToDTO: func(u *unit.Unit) any {
				return dto.FromUnit(u)
			},
		}),
	}
}
