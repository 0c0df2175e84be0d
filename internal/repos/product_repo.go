package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"shopcore/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, price, stock,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

// Search lists products matching an optional name/description term and
// price window, newest first.
func (r *ProductRepo) Search(term string, minPrice, maxPrice float64, limit, offset int) ([]domain.Product, int, error) {
	where := `1=1`
	args := []any{}
	if term != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+term+"%", "%"+term+"%")
	}
	if minPrice > 0 {
		where += ` AND price >= ?`
		args = append(args, minPrice)
	}
	if maxPrice > 0 {
		where += ` AND price <= ?`
		args = append(args, maxPrice)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.Product{}
	q := `SELECT ` + productCols + ` FROM products WHERE ` + where + `
	  ORDER BY datetime(created_at) DESC, id
	  LIMIT ? OFFSET ?`
	err := r.db.Select(&out, q, append(args, limit, offset)...)
	return out, total, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO products(id, name, description, price, stock, created_at)
		VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Description, p.Price, p.Stock)
	return err
}

// Update rewrites the mutable product fields. Past order items keep their
// frozen sale price regardless.
func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
		UPDATE products
		SET name = ?, description = ?, price = ?, stock = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, p.Description, p.Price, p.Stock, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
