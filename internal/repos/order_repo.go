package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"shopcore/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, customer_id, status, total_amount, created_at`

// Insert writes the order header inside the caller's transaction.
func (r *OrderRepo) Insert(ext sqlx.Ext, o domain.Order) error {
	_, err := ext.Exec(`
	  INSERT INTO orders(id, customer_id, status, total_amount, created_at)
	  VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, o.ID, o.CustomerID, o.Status, o.TotalAmount)
	return err
}

func (r *OrderRepo) InsertItem(ext sqlx.Ext, it domain.OrderItem) error {
	_, err := ext.Exec(`
	  INSERT INTO order_items(order_id, line_no, product_id, quantity, price)
	  VALUES(?, ?, ?, ?, ?)
	`, it.OrderID, it.LineNo, it.ProductID, it.Quantity, it.Price)
	return err
}

func (r *OrderRepo) Get(ext sqlx.Ext, orderID string) (domain.Order, error) {
	var o domain.Order
	err := sqlx.Get(ext, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID)
	if err == sql.ErrNoRows {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	if err := sqlx.Select(ext, &o.Items, `
		SELECT order_id, line_no, product_id, quantity, price
		FROM order_items WHERE order_id = ?
		ORDER BY line_no
	`, orderID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// SetStatusIf flips the status only when the row still holds from; the
// guard makes concurrent cancel/deliver attempts on the same order mutually
// exclusive. Returns false when the row was already transitioned away.
func (r *OrderRepo) SetStatusIf(ext sqlx.Ext, orderID string, from, to domain.OrderStatus) (bool, error) {
	res, err := ext.Exec(`UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, orderID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListByCustomer pages a customer's orders, newest first, with an optional
// status filter. Items are loaded per order; pages are small.
func (r *OrderRepo) ListByCustomer(customerID string, status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	where := `customer_id = ?`
	args := []any{customerID}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM orders WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.Order{}
	err := r.db.Select(&out, `
		SELECT `+orderCols+` FROM orders
		WHERE `+where+`
		ORDER BY datetime(created_at) DESC, id
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.db.Select(&out[i].Items, `
			SELECT order_id, line_no, product_id, quantity, price
			FROM order_items WHERE order_id = ?
			ORDER BY line_no
		`, out[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}
