package services

import (
	"shopcore/internal/domain"
	"shopcore/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Stock *repos.StockRepo
}

func NewCartService(carts *repos.CartRepo, stock *repos.StockRepo) *CartService {
	return &CartService{Carts: carts, Stock: stock}
}

// Add puts qty of a product into the customer's cart, creating the cart on
// first use. The availability check here is advisory and keeps obviously
// unfillable lines out of the cart; nothing is reserved until checkout.
func (s *CartService) Add(customerID, productID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	cartID, err := s.Carts.EnsureCart(customerID)
	if err != nil {
		return err
	}
	available, err := s.Stock.Qty(productID)
	if err != nil {
		return err
	}
	if qty > available {
		return domain.ErrInsufficientStock
	}
	return s.Carts.UpsertItem(cartID, productID, qty)
}

func (s *CartService) SetQuantity(customerID, productID string, qty int) error {
	cartID, err := s.Carts.EnsureCart(customerID)
	if err != nil {
		return err
	}
	if qty < 1 {
		return s.Carts.RemoveItem(cartID, productID)
	}
	return s.Carts.SetQuantity(cartID, productID, qty)
}

func (s *CartService) Remove(customerID, productID string) error {
	cartID, err := s.Carts.EnsureCart(customerID)
	if err != nil {
		return err
	}
	return s.Carts.RemoveItem(cartID, productID)
}

func (s *CartService) Clear(customerID string) error {
	cartID, err := s.Carts.EnsureCart(customerID)
	if err != nil {
		return err
	}
	return s.Carts.ClearItems(cartID)
}

type CartView struct {
	Items []domain.CartLine `json:"items"`
	Total float64           `json:"total"`
}

// View prices the cart at current product prices.
func (s *CartService) View(customerID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(customerID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.Carts.Lines(cartID)
	if err != nil {
		return CartView{}, err
	}
	cv := CartView{Items: lines}
	for _, l := range lines {
		cv.Total += l.Subtotal()
	}
	return cv, nil
}
