package handlers

import (
	"verduleria/internal/domain/catalogs/client"
	"verduleria/internal/infrastructure/http/v1/dto"
)

// ClientHandler handles client catalog endpoints.
type ClientHandler struct {
	*CatalogHandler[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]
}

// NewClientHandler creates a client handler.
func NewClientHandler(base *BaseHandler, service *client.Service) *ClientHandler {
	return &ClientHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]{
			Service:    service.CatalogService,
			EntityName: "client",
			MapCreateDTO: func(req dto.CreateClientRequest) *client.Client {
				c := client.NewClient(req.Name)
				c.Phone = req.Phone
				c.Address = req.Address
				return c
			},
			MapUpdateDTO: func(req dto.UpdateClientRequest, existing *client.Client) *client.Client {
				if req.Name != nil {
					existing.Name = *req.Name
				}
				if req.Phone != nil {
					existing.Phone = req.Phone
				}
				if req.Address != nil {
					existing.Address = req.Address
				}
				return existing
			},
			MapToDTO: func(c *client.Client) any {
				return dto.FromClient(c)
			},
		}),
	}
}
