package repos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopcore/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// EnsureCart returns the customer's cart id, creating the cart on first use.
func (r *CartRepo) EnsureCart(customerID string) (string, error) {
	var cartID string
	err := r.db.Get(&cartID, `SELECT id FROM carts WHERE customer_id = ?`, customerID)
	if err == nil {
		return cartID, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	cartID = uuid.NewString()
	_, err = r.db.Exec(`INSERT INTO carts(id, customer_id, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)`,
		cartID, customerID)
	if err != nil {
		return "", err
	}
	return cartID, nil
}

// UpsertItem adds qty to an existing line or inserts a new one.
func (r *CartRepo) UpsertItem(cartID, productID string, qty int) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id, product_id, quantity, created_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP
	`, cartID, productID, qty)
	return err
}

// SetQuantity overwrites a line's quantity; the line must already exist.
func (r *CartRepo) SetQuantity(cartID, productID string, qty int) error {
	res, err := r.db.Exec(`
		UPDATE cart_items SET quantity = ?, updated_at = CURRENT_TIMESTAMP
		WHERE cart_id = ? AND product_id = ?
	`, qty, cartID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CartRepo) RemoveItem(cartID, productID string) error {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Snapshot materializes the cart into priced lines, joining products for
// the current price. Order creation freezes these prices into order items.
func (r *CartRepo) Snapshot(ext sqlx.Ext, cartID string) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	err := sqlx.Select(ext, &lines, `
	  SELECT ci.product_id, p.name, ci.quantity, p.price AS unit_price
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at, ci.rowid
	`, cartID)
	return lines, err
}

// Lines reads the priced cart outside any transaction (cart views).
func (r *CartRepo) Lines(cartID string) ([]domain.CartLine, error) {
	return r.Snapshot(r.db, cartID)
}

func (r *CartRepo) ClearItems(cartID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
