package domain

type Product struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	Stock       int     `db:"stock" json:"stock"`
	CreatedAt   string  `db:"created_at" json:"createdAt"`
	UpdatedAt   string  `db:"updated_at" json:"updatedAt,omitempty"`
}

type Cart struct {
	ID         string `db:"id" json:"id"`
	CustomerID string `db:"customer_id" json:"customerId"`
	UpdatedAt  string `db:"updated_at" json:"updatedAt,omitempty"`
}

type CartItem struct {
	CartID    string `db:"cart_id" json:"cartId"`
	ProductID string `db:"product_id" json:"productId"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

// CartLine is a cart item joined with the product's current price. Lines are
// the input to order creation; the unit price here is the one that gets
// frozen into the order item.
type CartLine struct {
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unitPrice"`
}

func (l CartLine) Subtotal() float64 { return l.UnitPrice * float64(l.Quantity) }

type Order struct {
	ID          string      `db:"id" json:"id"`
	CustomerID  string      `db:"customer_id" json:"customerId"`
	Status      OrderStatus `db:"status" json:"status"`
	TotalAmount float64     `db:"total_amount" json:"totalAmount"`
	CreatedAt   string      `db:"created_at" json:"createdAt"`
	Items       []OrderItem `json:"items,omitempty"`
}

// OrderItem.Price is the sale price captured at order creation; it never
// changes when the product's price does. LineNo keeps the cart's line
// order so responses list items the way the customer added them.
type OrderItem struct {
	OrderID   string  `db:"order_id" json:"-"`
	LineNo    int     `db:"line_no" json:"-"`
	ProductID string  `db:"product_id" json:"productId"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Price     float64 `db:"price" json:"price"`
}
