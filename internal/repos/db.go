package repos

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"shopcore/internal/validate"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; funnel everything through one
	// connection so concurrent transactions queue instead of failing
	// with SQLITE_BUSY. Also required for shared :memory: databases.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo catalog if DB is empty (safe to run every start)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('CUSTOMER','ADMIN')),
  is_blocked INTEGER NOT NULL DEFAULT 0,
  blocked_until TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Customers (loyalty accounting lives here, not on users)
CREATE TABLE IF NOT EXISTS customers(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  loyalty_points INTEGER NOT NULL DEFAULT 0,
  cancel_count INTEGER NOT NULL DEFAULT 0
);

-- Products (stock is the single available-quantity ledger)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_name       ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Carts (one per customer, ephemeral)
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  customer_id TEXT UNIQUE NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, product_id)
);

-- Orders (never deleted, only transitioned)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL REFERENCES customers(id),
  status TEXT NOT NULL DEFAULT 'PENDING',
  total_amount NUMERIC NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_customer   ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  line_no    INTEGER NOT NULL DEFAULT 0,        -- cart line order at checkout
  product_id TEXT NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo products/customers")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO products(id,name,description,price,stock) VALUES
	  ('kbd-001','Mechanical Keyboard','Hot-swappable 87-key board',89.99,25),
	  ('mouse-001','Wireless Mouse','Low-latency 2.4GHz mouse',39.50,40),
	  ('mon-001','27in Monitor','1440p 144Hz IPS panel',299.00,12)`)

	mkUser := func(id, email, name, role, raw string) {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		tx.MustExec(`INSERT INTO users(id,email,name,password_hash,role)
		  VALUES(?,?,?,?,?) ON CONFLICT(email) DO NOTHING`, id, email, name, string(h), role)
	}
	mkUser("u-alice", "alice@shopcore.test", "Alice", "CUSTOMER", "Passw0rd!")
	mkUser("u-bob", "bob@shopcore.test", "Bob", "CUSTOMER", "Passw0rd!")

	tx.MustExec(`INSERT INTO customers(id,user_id,loyalty_points,cancel_count) VALUES
	  ('c-alice','u-alice',0,0),
	  ('c-bob','u-bob',0,0)
	  ON CONFLICT(user_id) DO NOTHING`)

	return tx.Commit()
}

// SeedAdmin ensures the configured admin account exists (idempotent). A
// password outside the complexity window is refused so a weak
// ADMIN_PASSWORD never makes it into the database.
func SeedAdmin(db *sqlx.DB, email, password string) error {
	if !validate.Password(password) {
		return fmt.Errorf("admin password for %s does not meet the complexity policy", email)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users(id,email,name,password_hash,role)
		VALUES(?,?,?,?,'ADMIN')
		ON CONFLICT(email) DO NOTHING
	`, uuid.NewString(), email, "Admin", string(h))
	return err
}
