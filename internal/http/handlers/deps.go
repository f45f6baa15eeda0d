package handlers

import (
	"github.com/jmoiron/sqlx"

	"vapordepot/internal/cache"
	"vapordepot/internal/config"
	"vapordepot/internal/repos"
	"vapordepot/internal/services"
	"vapordepot/internal/square"
)

type Deps struct {
	ProductHandler *ProductHandler
	OrderHandler   *OrderHandler
	AdminHandler   *AdminHandler
	AuthHandler    *AuthHandler
	WebhookHandler *WebhookHandler
	PageHandler    *PageHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, layer *cache.Layer, sq *square.Client, auth *services.AuthService) *Deps {
	productRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	listingSvc := services.NewListingService(layer)
	stockSvc := services.NewStockService(sq)
	orderSvc := services.NewOrderService(stockSvc, orderRepo, sq, layer)
	syncSvc := services.NewSyncService(sq, productRepo, layer)

	return &Deps{
		ProductHandler: &ProductHandler{Listing: listingSvc},
		OrderHandler:   &OrderHandler{Order: orderSvc, Repo: orderRepo},
		AdminHandler: &AdminHandler{
			Sync:       syncSvc,
			Orders:     orderRepo,
			OrderSvc:   orderSvc,
			Cache:      layer,
			SyncSecret: cfg.SyncSecret,
		},
		AuthHandler:    &AuthHandler{Auth: auth},
		WebhookHandler: &WebhookHandler{SignatureKey: cfg.SquareWebhookKey},
		PageHandler:    &PageHandler{Listing: listingSvc},
	}
}
