package handlers

import (
	"stoik/internal/cache"
	"stoik/internal/config"
	"stoik/internal/events"
	"stoik/internal/repos"
	"stoik/internal/services"
)

type Deps struct {
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	CustomerHandler  *CustomerHandler
	OrderHandler     *OrderHandler
	DashboardHandler *DashboardHandler
}

func NewDeps(store *repos.Store, cfg config.Config, c cache.Cache, pub events.Publisher) *Deps {
	if c == nil {
		c = cache.Nop{}
	}
	if pub == nil {
		pub = events.LogPublisher{}
	}
	productSvc := services.NewProductService(store, c, pub)
	invSvc := services.NewInventoryService(store)
	customerSvc := services.NewCustomerService(store, c)
	orderSvc := services.NewOrderService(store, c, pub, cfg.BulkRequiredOnCreate)
	analyticsSvc := services.NewAnalyticsService(store, c)

	return &Deps{
		CategoryHandler:  &CategoryHandler{Products: productSvc},
		ProductHandler:   &ProductHandler{Products: productSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		CustomerHandler:  &CustomerHandler{Customers: customerSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		DashboardHandler: &DashboardHandler{Analytics: analyticsSvc},
	}
}
