package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"shopcore/internal/domain"
)

// StockRepo is the stock ledger: atomic reserve/release of per-product
// available quantity. Methods take an sqlx.Ext so they run inside whatever
// transaction the caller opened; a release must be paired exactly once with
// a prior successful reserve.
type StockRepo struct{ db *sqlx.DB }

func NewStockRepo(db *sqlx.DB) *StockRepo { return &StockRepo{db: db} }

// Reserve subtracts qty if enough stock exists. The conditional UPDATE is
// what keeps two racing orders from both draining the same units: only one
// of them matches stock >= qty.
func (r *StockRepo) Reserve(ext sqlx.Ext, productID string, qty int) (int, error) {
	res, err := ext.Exec(`
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing product from an out-of-stock one.
		var exists int
		if err := sqlx.Get(ext, &exists, `SELECT COUNT(*) FROM products WHERE id = ?`, productID); err != nil {
			return 0, err
		}
		if exists == 0 {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrInsufficientStock
	}
	return r.stock(ext, productID)
}

// Release returns qty units to the product's available stock.
func (r *StockRepo) Release(ext sqlx.Ext, productID string, qty int) (int, error) {
	res, err := ext.Exec(`
		UPDATE products
		SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, domain.ErrNotFound
	}
	return r.stock(ext, productID)
}

func (r *StockRepo) stock(ext sqlx.Ext, productID string) (int, error) {
	var stock int
	err := sqlx.Get(ext, &stock, `SELECT stock FROM products WHERE id = ?`, productID)
	if err == sql.ErrNoRows {
		return 0, domain.ErrNotFound
	}
	return stock, err
}

// Qty reads current stock outside any reservation (availability checks).
func (r *StockRepo) Qty(productID string) (int, error) {
	return r.stock(r.db, productID)
}
