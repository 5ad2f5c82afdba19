package v1

import (
	"github.com/gin-gonic/gin"

	"verduleria/internal/domain/catalogs/client"
	"verduleria/internal/domain/catalogs/product"
	"verduleria/internal/domain/catalogs/unit"
	"verduleria/internal/domain/conversion"
	"verduleria/internal/domain/deliverynote"
	"verduleria/internal/domain/order"
	"verduleria/internal/domain/productunit"
	"verduleria/internal/domain/purchase"
	"verduleria/internal/domain/purchaseorder"
	"verduleria/internal/domain/suggestion"
	"verduleria/internal/infrastructure/http/v1/handlers"
	"verduleria/internal/infrastructure/http/v1/middleware"
	"verduleria/internal/infrastructure/storage/postgres"
	"verduleria/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	Products *product.Service
	Units    *unit.Service
	Clients  *client.Service

	ProductUnits *productunit.Service
	Conversions  *conversion.Service

	Orders         *order.Service
	Suggestions    *suggestion.Service
	PurchaseOrders *purchaseorder.Service
	Purchases      *purchase.Service
	DeliveryNotes  *deliverynote.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		registerCatalogRoutes(apiV1, cfg)
		registerStockRoutes(apiV1, cfg)
		registerDocumentRoutes(apiV1, cfg)
	}

	return router
}

// registerCatalogRoutes registers product, unit and client endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	productHandler := handlers.NewProductHandler(baseHandler, cfg.Products)
	RegisterCatalogRoutes(rg.Group("/products"), productHandler)

	unitHandler := handlers.NewUnitHandler(baseHandler, cfg.Units)
	RegisterCatalogRoutes(rg.Group("/units"), unitHandler)

	clientHandler := handlers.NewClientHandler(baseHandler, cfg.Clients)
	RegisterCatalogRoutes(rg.Group("/clients"), clientHandler)
}

// registerStockRoutes registers product-unit binding and conversion endpoints.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	puHandler := handlers.NewProductUnitHandler(baseHandler, cfg.ProductUnits)
	pu := rg.Group("/product-units")
	{
		pu.POST("", puHandler.EnsureBinding)
		pu.GET("/:id", puHandler.Get)
		pu.PUT("/:id/margin", puHandler.SetMargin)
		pu.POST("/:id/purchase-unit", puHandler.DesignatePurchaseUnit)
		pu.DELETE("/:id/purchase-unit", puHandler.ReleasePurchaseUnit)
	}
	rg.GET("/products/:id/units", puHandler.ListByProduct)

	convHandler := handlers.NewConversionHandler(baseHandler, cfg.Conversions)
	conv := rg.Group("/conversions")
	{
		conv.POST("", convHandler.Create)
		conv.GET("/convert", convHandler.Convert)
		conv.PUT("/:id", convHandler.Update)
		conv.DELETE("/:id", convHandler.Delete)
	}
	rg.GET("/products/:id/conversions", convHandler.ListByProduct)
}

// registerDocumentRoutes registers order, purchase-order, purchase and
// delivery-note endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	orderHandler := handlers.NewOrderHandler(baseHandler, cfg.Orders)
	noteHandler := handlers.NewDeliveryNoteHandler(baseHandler, cfg.DeliveryNotes)
	orders := rg.Group("/orders")
	{
		orders.GET("", orderHandler.List)
		orders.POST("", orderHandler.Create)
		orders.GET("/:id", orderHandler.Get)
		orders.GET("/:id/suggested-prices", noteHandler.SuggestedPrices)
	}

	suggestionHandler := handlers.NewSuggestionHandler(baseHandler, cfg.Suggestions)
	rg.GET("/suggestions", suggestionHandler.Aggregate)

	poHandler := handlers.NewPurchaseOrderHandler(baseHandler, cfg.PurchaseOrders)
	pos := rg.Group("/purchase-orders")
	{
		pos.GET("", poHandler.List)
		pos.POST("", poHandler.CreateFromDemand)
		pos.GET("/:id", poHandler.Get)
		pos.GET("/:id/print", poHandler.Print)
		pos.PUT("/:id/lines/:lineId", poHandler.UpdateLine)
		pos.DELETE("/:id/lines/:lineId", poHandler.DeleteLine)
		pos.POST("/:id/confirm", poHandler.Confirm)
		pos.POST("/:id/cancel", poHandler.Cancel)
	}

	purchaseHandler := handlers.NewPurchaseHandler(baseHandler, cfg.Purchases)
	purchases := rg.Group("/purchases")
	{
		purchases.GET("", purchaseHandler.List)
		purchases.POST("", purchaseHandler.Create)
		purchases.GET("/:id", purchaseHandler.Get)
		purchases.PUT("/:id/lines/:lineId", purchaseHandler.UpdateLine)
		purchases.DELETE("/:id/lines/:lineId", purchaseHandler.DeleteLine)
		purchases.POST("/:id/confirm", purchaseHandler.Confirm)
		purchases.POST("/:id/cancel", purchaseHandler.Cancel)
	}

	noteGroup := rg.Group("/delivery-notes")
	{
		noteGroup.GET("", noteHandler.List)
		noteGroup.POST("", noteHandler.Create)
		noteGroup.GET("/:id", noteHandler.Get)
		noteGroup.GET("/:id/print", noteHandler.Print)
		noteGroup.POST("/:id/deliver", noteHandler.ConfirmDelivery)
		noteGroup.DELETE("/:id", noteHandler.Void)
	}
}
