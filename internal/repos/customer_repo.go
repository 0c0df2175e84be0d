package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"shopcore/internal/domain"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) Get(ext sqlx.Ext, id string) (domain.Customer, error) {
	var c domain.Customer
	err := sqlx.Get(ext, &c, `
		SELECT id, user_id, loyalty_points, cancel_count
		FROM customers WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return domain.Customer{}, domain.ErrNotFound
	}
	return c, err
}

func (r *CustomerRepo) ByUserID(userID string) (domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, `
		SELECT id, user_id, loyalty_points, cancel_count
		FROM customers WHERE user_id = ?`, userID)
	if err == sql.ErrNoRows {
		return domain.Customer{}, domain.ErrNotFound
	}
	return c, err
}

// AddLoyaltyPoints applies a signed delta and returns the new balance. The
// balance may go negative; blocking policy decides what that means.
func (r *CustomerRepo) AddLoyaltyPoints(ext sqlx.Ext, customerID string, delta int) (int, error) {
	if _, err := ext.Exec(`
		UPDATE customers SET loyalty_points = loyalty_points + ? WHERE id = ?
	`, delta, customerID); err != nil {
		return 0, err
	}
	var balance int
	err := sqlx.Get(ext, &balance, `SELECT loyalty_points FROM customers WHERE id = ?`, customerID)
	if err == sql.ErrNoRows {
		return 0, domain.ErrNotFound
	}
	return balance, err
}

func (r *CustomerRepo) IncrementCancelCount(ext sqlx.Ext, customerID string) error {
	_, err := ext.Exec(`UPDATE customers SET cancel_count = cancel_count + 1 WHERE id = ?`, customerID)
	return err
}

// BlockUser marks the customer's user account blocked until the given
// RFC3339 timestamp. The block is lifted lazily at login.
func (r *CustomerRepo) BlockUser(ext sqlx.Ext, userID, until string) error {
	_, err := ext.Exec(`
		UPDATE users SET is_blocked = 1, blocked_until = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, until, userID)
	return err
}
