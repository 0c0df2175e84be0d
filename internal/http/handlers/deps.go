package handlers

import (
	"github.com/jmoiron/sqlx"

	"shopcore/internal/config"
	"shopcore/internal/repos"
	"shopcore/internal/services"
)

type Deps struct {
	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler

	Auth      *services.AuthService
	Customers *repos.CustomerRepo
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	custRepo := repos.NewCustomerRepo(db)
	prodRepo := repos.NewProductRepo(db)
	stockRepo := repos.NewStockRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	authSvc := &services.AuthService{Users: userRepo}
	catalogSvc := services.NewCatalogService(prodRepo)
	cartSvc := services.NewCartService(cartRepo, stockRepo)
	policy := services.NewLoyaltyPolicy(cfg.Policy)
	orderSvc := services.NewOrderService(db, cartRepo, stockRepo, orderRepo, custRepo, policy)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: authSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc},
		OrderHandler:   &OrderHandler{Orders: orderSvc},
		Auth:           authSvc,
		Customers:      custRepo,
	}
}
