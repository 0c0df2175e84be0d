package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"shopcore/internal/config"
	"shopcore/internal/http/handlers"
	"shopcore/internal/repos"
)

func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{Policy: config.Policy{
		CancelPenaltyPoints: 50, BlockThreshold: 50,
		RewardTierMin: 100, RewardHighPoints: 50, RewardLowPoints: 20,
	}}
	deps := handlers.NewDeps(db, cfg)

	app := fiber.New()
	app.Use(requestid.New())

	api := app.Group("/api/v1")
	api.Post("/auth/login", deps.AuthHandler.Login)

	cart := api.Group("/cart", handlers.RequireCustomer(deps.Auth, deps.Customers))
	cart.Post("/items", deps.CartHandler.Add)

	orders := api.Group("/orders", handlers.RequireCustomer(deps.Auth, deps.Customers))
	orders.Post("/", deps.OrderHandler.Create)
	orders.Get("/my-orders", deps.OrderHandler.MyOrders)
	orders.Get("/:id", deps.OrderHandler.Get)
	orders.Patch("/:id/cancel", deps.OrderHandler.Cancel)

	admin := api.Group("/admin", handlers.RequireAdmin(deps.Auth))
	admin.Patch("/orders/:id/status", deps.OrderHandler.UpdateStatus)

	return app, db
}

// seedSession creates a user (+customer unless admin) and binds a session id.
func seedSession(t *testing.T, db *sqlx.DB, sid, userID, custID, role string) {
	t.Helper()
	h, _ := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	if _, err := db.Exec(`INSERT INTO users(id,email,name,password_hash,role) VALUES(?,?,?,?,?)`,
		userID, userID+"@test.local", "Tester", string(h), role); err != nil {
		t.Fatal(err)
	}
	if custID != "" {
		if _, err := db.Exec(`INSERT INTO customers(id,user_id) VALUES(?,?)`, custID, userID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.Exec(`INSERT INTO sessions(id,user_id) VALUES(?,?)`, sid, userID); err != nil {
		t.Fatal(err)
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path, sid, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatal(err)
	}
	return envelope.Data
}

func TestOrderEndpoints_FullFlow(t *testing.T) {
	app, db := newTestApp(t)
	seedSession(t, db, "sid-cust", "user-1", "cust-1", "CUSTOMER")
	seedSession(t, db, "sid-admin", "user-adm", "", "ADMIN")
	if _, err := db.Exec(`INSERT INTO products(id,name,price,stock) VALUES('prod-a','Widget',10.0,5)`); err != nil {
		t.Fatal(err)
	}

	// Add to cart, place order
	resp := doJSON(t, app, "POST", "/api/v1/cart/items", "sid-cust", `{"productId":"prod-a","quantity":2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cart add: got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, "POST", "/api/v1/orders/", "sid-cust", "")
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("order create: got %d body=%s", resp.StatusCode, b)
	}
	data := decodeData(t, resp)
	oid, _ := data["id"].(string)
	if oid == "" {
		t.Fatalf("no order id in response: %v", data)
	}
	if total, _ := data["totalAmount"].(float64); total != 20.0 {
		t.Fatalf("want total 20, got %v", data["totalAmount"])
	}

	// Owner can fetch it
	resp = doJSON(t, app, "GET", "/api/v1/orders/"+oid, "sid-cust", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("order get: got %d", resp.StatusCode)
	}

	// Cancellation is not available through the fulfillment endpoint
	resp = doJSON(t, app, "PATCH", "/api/v1/admin/orders/"+oid+"/status", "sid-admin", `{"status":"CANCELLED"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("admin cancel via status: want 400, got %d", resp.StatusCode)
	}

	// Admin delivers it
	resp = doJSON(t, app, "PATCH", "/api/v1/admin/orders/"+oid+"/status", "sid-admin", `{"status":"DELIVERED"}`)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status update: got %d body=%s", resp.StatusCode, b)
	}

	// Cancel after delivery is an invalid transition -> 400
	resp = doJSON(t, app, "PATCH", "/api/v1/orders/"+oid+"/cancel", "sid-cust", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("cancel delivered: got %d", resp.StatusCode)
	}
}

func TestOrderEndpoints_AuthBoundaries(t *testing.T) {
	app, db := newTestApp(t)
	seedSession(t, db, "sid-cust", "user-1", "cust-1", "CUSTOMER")

	// No session -> 401
	resp := doJSON(t, app, "POST", "/api/v1/orders/", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 without session, got %d", resp.StatusCode)
	}

	// Customer on admin route -> 403
	resp = doJSON(t, app, "PATCH", "/api/v1/admin/orders/x/status", "sid-cust", `{"status":"SHIPPED"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403 for customer on admin route, got %d", resp.StatusCode)
	}

	// Empty cart -> 400
	resp = doJSON(t, app, "POST", "/api/v1/orders/", "sid-cust", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 for empty cart, got %d", resp.StatusCode)
	}

	// Unknown order -> 404
	resp = doJSON(t, app, "GET", "/api/v1/orders/nope", "sid-cust", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 for unknown order, got %d", resp.StatusCode)
	}
}

func TestOrderEndpoints_OwnershipDenied(t *testing.T) {
	app, db := newTestApp(t)
	seedSession(t, db, "sid-1", "user-1", "cust-1", "CUSTOMER")
	seedSession(t, db, "sid-2", "user-2", "cust-2", "CUSTOMER")
	if _, err := db.Exec(`INSERT INTO products(id,name,price,stock) VALUES('prod-a','Widget',10.0,5)`); err != nil {
		t.Fatal(err)
	}

	doJSON(t, app, "POST", "/api/v1/cart/items", "sid-1", `{"productId":"prod-a","quantity":1}`)
	resp := doJSON(t, app, "POST", "/api/v1/orders/", "sid-1", "")
	data := decodeData(t, resp)
	oid, _ := data["id"].(string)

	// Another customer cannot read or cancel it
	resp = doJSON(t, app, "GET", "/api/v1/orders/"+oid, "sid-2", "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403 for foreign order read, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, "PATCH", "/api/v1/orders/"+oid+"/cancel", "sid-2", "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403 for foreign cancel, got %d", resp.StatusCode)
	}
}
