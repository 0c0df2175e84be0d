package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"shopcore/internal/domain"
	"shopcore/internal/services"
)

func placeOrder(t *testing.T, svc *services.OrderService, db *sqlx.DB, custID, productID string, qty int) domain.Order {
	t.Helper()
	addToCart(t, db, custID, productID, qty)
	o, err := svc.CreateOrderFromCart(custID)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func customerRow(t *testing.T, db *sqlx.DB, custID string) domain.Customer {
	t.Helper()
	var c domain.Customer
	if err := db.Get(&c, `SELECT id,user_id,loyalty_points,cancel_count FROM customers WHERE id=?`, custID); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCancelOrder_RestoresStockAndPenalizes(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "prod-a", 10.00, 5)
	seedCustomer(t, db, "cust-1", "user-1", 120)
	svc := newEngine(db)
	o := placeOrder(t, svc, db, "cust-1", "prod-a", 2)

	if got := stockOf(t, db, "prod-a"); got != 3 {
		t.Fatalf("want stock 3 after order, got %d", got)
	}

	cancelled, err := svc.CancelOrder(o.ID, "cust-1")
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("want CANCELLED, got %s", cancelled.Status)
	}
	if got := stockOf(t, db, "prod-a"); got != 5 {
		t.Fatalf("stock not restored: %d", got)
	}

	c := customerRow(t, db, "cust-1")
	if c.LoyaltyPoints != 70 {
		t.Fatalf("want 70 points after penalty, got %d", c.LoyaltyPoints)
	}
	if c.CancelCount != 1 {
		t.Fatalf("want cancelCount 1, got %d", c.CancelCount)
	}

	// 70 >= threshold 50: no block
	var blocked bool
	if err := db.Get(&blocked, `SELECT is_blocked FROM users WHERE id='user-1'`); err != nil {
		t.Fatal(err)
	}
	if blocked {
		t.Fatal("customer should not be blocked above the threshold")
	}

	// Second cancel hits the terminal state
	if _, err := svc.CancelOrder(o.ID, "cust-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
}

func TestCancelOrder_BlocksBelowThreshold(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "prod-a", 10.00, 5)
	seedCustomer(t, db, "cust-1", "user-1", 20)
	svc := newEngine(db)
	o := placeOrder(t, svc, db, "cust-1", "prod-a", 1)

	if _, err := svc.CancelOrder(o.ID, "cust-1"); err != nil {
		t.Fatal(err)
	}

	c := customerRow(t, db, "cust-1")
	if c.LoyaltyPoints != -30 {
		t.Fatalf("want -30 points, got %d", c.LoyaltyPoints)
	}

	var u domain.User
	if err := db.Get(&u, `SELECT id,email,name,password_hash,role,is_blocked,blocked_until FROM users WHERE id='user-1'`); err != nil {
		t.Fatal(err)
	}
	if !u.IsBlocked {
		t.Fatal("customer should be blocked under the threshold")
	}
	until, err := time.Parse(time.RFC3339, u.BlockedUntil)
	if err != nil {
		t.Fatalf("bad blocked_until %q: %v", u.BlockedUntil, err)
	}
	// Policy says ~30 days out
	want := time.Now().Add(30 * 24 * time.Hour)
	if until.Before(want.Add(-time.Hour)) || until.After(want.Add(time.Hour)) {
		t.Fatalf("blocked_until %s not ~30 days out", u.BlockedUntil)
	}
}

func TestCancelOrder_ForbiddenAndNotFound(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "prod-a", 10.00, 5)
	seedCustomer(t, db, "cust-1", "user-1", 100)
	seedCustomer(t, db, "cust-2", "user-2", 100)
	svc := newEngine(db)
	o := placeOrder(t, svc, db, "cust-1", "prod-a", 1)

	if _, err := svc.CancelOrder(o.ID, "cust-2"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := svc.CancelOrder("no-such-order", "cust-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	// Failed cancels must not touch stock
	if got := stockOf(t, db, "prod-a"); got != 4 {
		t.Fatalf("stock changed by failed cancel: %d", got)
	}
}

func TestDeliver_TieredRewards(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "prod-a", 10.00, 10)
	seedCustomer(t, db, "cust-hi", "user-hi", 120)
	seedCustomer(t, db, "cust-lo", "user-lo", 40)
	svc := newEngine(db)

	hi := placeOrder(t, svc, db, "cust-hi", "prod-a", 1)
	lo := placeOrder(t, svc, db, "cust-lo", "prod-a", 1)

	if _, err := svc.UpdateOrderStatus(hi.ID, domain.StatusDelivered); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateOrderStatus(lo.ID, domain.StatusDelivered); err != nil {
		t.Fatal(err)
	}

	if got := customerRow(t, db, "cust-hi").LoyaltyPoints; got != 170 {
		t.Fatalf("high tier: want 170, got %d", got)
	}
	if got := customerRow(t, db, "cust-lo").LoyaltyPoints; got != 60 {
		t.Fatalf("low tier: want 60, got %d", got)
	}

	// No double reward
	if _, err := svc.UpdateOrderStatus(hi.ID, domain.StatusDelivered); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition on re-deliver, got %v", err)
	}
	if got := customerRow(t, db, "cust-hi").LoyaltyPoints; got != 170 {
		t.Fatalf("double reward applied: %d", got)
	}
}

func TestUpdateOrderStatus_FulfillmentPath(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "prod-a", 10.00, 5)
	seedCustomer(t, db, "cust-1", "user-1", 0)
	svc := newEngine(db)
	o := placeOrder(t, svc, db, "cust-1", "prod-a", 1)

	for _, st := range []domain.OrderStatus{domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered} {
		updated, err := svc.UpdateOrderStatus(o.ID, st)
		if err != nil {
			t.Fatalf("transition to %s: %v", st, err)
		}
		if updated.Status != st {
			t.Fatalf("want %s, got %s", st, updated.Status)
		}
	}

	// Terminal: nothing transitions out of DELIVERED
	if _, err := svc.UpdateOrderStatus(o.ID, domain.StatusCancelled); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition out of DELIVERED, got %v", err)
	}
	if _, err := svc.UpdateOrderStatus("missing", domain.StatusShipped); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdateOrderStatus_RejectsCancelled(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "prod-a", 10.00, 5)
	seedCustomer(t, db, "cust-1", "user-1", 120)
	svc := newEngine(db)
	o := placeOrder(t, svc, db, "cust-1", "prod-a", 2)

	// The fulfillment path must not cancel: it would skip the stock
	// release and the penalty, stranding the reserved units.
	if _, err := svc.UpdateOrderStatus(o.ID, domain.StatusCancelled); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
	if got := stockOf(t, db, "prod-a"); got != 3 {
		t.Fatalf("rejected transition touched stock: %d", got)
	}
	var st domain.OrderStatus
	if err := db.Get(&st, `SELECT status FROM orders WHERE id=?`, o.ID); err != nil {
		t.Fatal(err)
	}
	if st != domain.StatusPending {
		t.Fatalf("want order still PENDING, got %s", st)
	}
	if c := customerRow(t, db, "cust-1"); c.LoyaltyPoints != 120 || c.CancelCount != 0 {
		t.Fatalf("rejected transition touched loyalty: %+v", c)
	}

	// The real cancellation still runs the full compensation.
	if _, err := svc.CancelOrder(o.ID, "cust-1"); err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, db, "prod-a"); got != 5 {
		t.Fatalf("stock not restored: %d", got)
	}
	if c := customerRow(t, db, "cust-1"); c.LoyaltyPoints != 70 || c.CancelCount != 1 {
		t.Fatalf("penalty not applied: %+v", c)
	}
}

func TestCancelAfterDeliveryFails(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "prod-a", 10.00, 5)
	seedCustomer(t, db, "cust-1", "user-1", 0)
	svc := newEngine(db)
	o := placeOrder(t, svc, db, "cust-1", "prod-a", 2)

	if _, err := svc.UpdateOrderStatus(o.ID, domain.StatusDelivered); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CancelOrder(o.ID, "cust-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
	// Delivered stock stays consumed
	if got := stockOf(t, db, "prod-a"); got != 3 {
		t.Fatalf("stock released for delivered order: %d", got)
	}
}

func TestGetMyOrdersAndOwnership(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, "prod-a", 10.00, 20)
	seedCustomer(t, db, "cust-1", "user-1", 0)
	seedCustomer(t, db, "cust-2", "user-2", 0)
	svc := newEngine(db)

	o1 := placeOrder(t, svc, db, "cust-1", "prod-a", 1)
	o2 := placeOrder(t, svc, db, "cust-1", "prod-a", 2)
	placeOrder(t, svc, db, "cust-2", "prod-a", 1)

	if _, err := svc.CancelOrder(o1.ID, "cust-1"); err != nil {
		t.Fatal(err)
	}

	page, err := svc.GetMyOrders("cust-1", 1, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("want 2 orders, got total=%d len=%d", page.Total, len(page.Items))
	}

	filtered, err := svc.GetMyOrders("cust-1", 1, 10, domain.StatusCancelled)
	if err != nil {
		t.Fatal(err)
	}
	if filtered.Total != 1 || filtered.Items[0].ID != o1.ID {
		t.Fatalf("status filter broken: %+v", filtered)
	}

	// Ownership: customer 2 cannot read customer 1's order, admin can
	if _, err := svc.GetOrderByID(o2.ID, "cust-2", "CUSTOMER"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := svc.GetOrderByID(o2.ID, "", "ADMIN"); err != nil {
		t.Fatalf("admin bypass broken: %v", err)
	}
}
