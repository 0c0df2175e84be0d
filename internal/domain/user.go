package domain

type User struct {
	ID           string `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	Name         string `db:"name" json:"name"`
	Hash         string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"` // CUSTOMER | ADMIN
	IsBlocked    bool   `db:"is_blocked" json:"isBlocked"`
	BlockedUntil string `db:"blocked_until" json:"blockedUntil,omitempty"` // RFC3339, empty when not blocked
}

type Customer struct {
	ID            string `db:"id" json:"id"`
	UserID        string `db:"user_id" json:"userId"`
	LoyaltyPoints int    `db:"loyalty_points" json:"loyaltyPoints"`
	CancelCount   int    `db:"cancel_count" json:"cancelCount"`
}
