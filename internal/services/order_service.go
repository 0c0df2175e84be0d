package services

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopcore/internal/domain"
	"shopcore/internal/repos"
)

// OrderService is the order/inventory transaction engine. Every multi-step
// operation runs in a single transaction: either the order, its stock
// mutations and its loyalty side effects all commit, or none do.
type OrderService struct {
	db        *sqlx.DB
	Carts     *repos.CartRepo
	Stock     *repos.StockRepo
	Orders    *repos.OrderRepo
	Customers *repos.CustomerRepo
	Policy    LoyaltyPolicy
}

func NewOrderService(db *sqlx.DB, carts *repos.CartRepo, stock *repos.StockRepo,
	orders *repos.OrderRepo, customers *repos.CustomerRepo, policy LoyaltyPolicy) *OrderService {
	return &OrderService{db: db, Carts: carts, Stock: stock, Orders: orders, Customers: customers, Policy: policy}
}

// CreateOrderFromCart converts the customer's cart into a PENDING order,
// reserving stock for every line. All-or-nothing: the first failed
// reservation rolls back the ones before it. The cart is cleared only
// after the order has durably committed.
func (s *OrderService) CreateOrderFromCart(customerID string) (domain.Order, error) {
	cartID, err := s.Carts.EnsureCart(customerID)
	if err != nil {
		return domain.Order{}, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	lines, err := s.Carts.Snapshot(tx, cartID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	o := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Status:     domain.StatusPending,
	}
	for i, l := range lines {
		if _, err := s.Stock.Reserve(tx, l.ProductID, l.Quantity); err != nil {
			return domain.Order{}, err
		}
		// Price frozen at reservation time, not re-read later.
		o.TotalAmount += l.Subtotal()
		o.Items = append(o.Items, domain.OrderItem{
			OrderID:   o.ID,
			LineNo:    i,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		})
	}

	if err := s.Orders.Insert(tx, o); err != nil {
		return domain.Order{}, err
	}
	for _, it := range o.Items {
		if err := s.Orders.InsertItem(tx, it); err != nil {
			return domain.Order{}, err
		}
	}
	if err := sqlx.Get(tx, &o.CreatedAt, `SELECT created_at FROM orders WHERE id = ?`, o.ID); err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}

	// Post-commit on purpose: a crash here leaves a stale cart, never a
	// cleared cart without its order.
	if err := s.Carts.ClearItems(cartID); err != nil {
		log.Printf("[order] clear cart %s after order %s: %v", cartID, o.ID, err)
	}
	return o, nil
}

// CancelOrder moves a PENDING order to CANCELLED: releases every reserved
// unit, applies the cancellation penalty and, when the balance drops under
// the policy threshold, blocks the account until the policy expiry.
func (s *OrderService) CancelOrder(orderID, customerID string) (domain.Order, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	o, err := s.Orders.Get(tx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.CustomerID != customerID {
		return domain.Order{}, domain.ErrForbidden
	}
	if o.Status != domain.StatusPending {
		return domain.Order{}, domain.ErrInvalidTransition
	}
	// Terminal-state write doubles as the mutual-exclusion guard against a
	// racing cancel or delivery.
	ok, err := s.Orders.SetStatusIf(tx, orderID, domain.StatusPending, domain.StatusCancelled)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	for _, it := range o.Items {
		if _, err := s.Stock.Release(tx, it.ProductID, it.Quantity); err != nil {
			return domain.Order{}, err
		}
	}

	cust, err := s.Customers.Get(tx, o.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	delta, block, blockFor := s.Policy.CancellationPenalty(cust)
	if _, err := s.Customers.AddLoyaltyPoints(tx, cust.ID, delta); err != nil {
		return domain.Order{}, err
	}
	if err := s.Customers.IncrementCancelCount(tx, cust.ID); err != nil {
		return domain.Order{}, err
	}
	if block {
		until := time.Now().Add(blockFor).UTC().Format(time.RFC3339)
		if err := s.Customers.BlockUser(tx, cust.UserID, until); err != nil {
			return domain.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.StatusCancelled
	return o, nil
}

// UpdateOrderStatus drives admin-initiated fulfillment transitions. On
// DELIVERED the customer earns the tiered reward, atomically with the
// status write; re-delivering a delivered order fails. CANCELLED is not a
// fulfillment state: it carries compensation (stock release, penalty) that
// only CancelOrder performs, so it is rejected here.
func (s *OrderService) UpdateOrderStatus(orderID string, newStatus domain.OrderStatus) (domain.Order, error) {
	if newStatus == domain.StatusCancelled {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	o, err := s.Orders.Get(tx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !o.Status.CanTransition(newStatus) {
		return domain.Order{}, domain.ErrInvalidTransition
	}
	ok, err := s.Orders.SetStatusIf(tx, orderID, o.Status, newStatus)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	if newStatus == domain.StatusDelivered {
		cust, err := s.Customers.Get(tx, o.CustomerID)
		if err != nil {
			return domain.Order{}, err
		}
		reward := s.Policy.DeliveryReward(cust.LoyaltyPoints)
		if _, err := s.Customers.AddLoyaltyPoints(tx, cust.ID, reward); err != nil {
			return domain.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	o.Status = newStatus
	return o, nil
}

type OrderPage struct {
	Items []domain.Order `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// GetMyOrders pages the customer's own orders, optionally filtered by
// status (empty status means all).
func (s *OrderService) GetMyOrders(customerID string, page, limit int, status domain.OrderStatus) (OrderPage, error) {
	items, total, err := s.Orders.ListByCustomer(customerID, status, limit, (page-1)*limit)
	if err != nil {
		return OrderPage{}, err
	}
	return OrderPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetOrderByID enforces ownership; admins bypass the check.
func (s *OrderService) GetOrderByID(orderID, requesterID, requesterRole string) (domain.Order, error) {
	o, err := s.Orders.Get(s.db, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if requesterRole != "ADMIN" && o.CustomerID != requesterID {
		return domain.Order{}, domain.ErrForbidden
	}
	return o, nil
}
