package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bestbags/internal/catalog"
)

type stubProducts struct {
	products map[string]*catalog.Product
}

func (s *stubProducts) FindProductByCode(ctx context.Context, code string) (*catalog.Product, error) {
	return s.products[code], nil
}

func newCartRouter(t *testing.T, products *stubProducts) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewHandler(products, log.New(io.Discard, "", 0))

	router := gin.New()
	router.Use(sessions.Sessions("bb_session", cookie.NewStore([]byte("test-secret"))))
	router.GET("/api/cart", handler.Show)
	router.POST("/api/cart/items", handler.AddItem)
	router.PUT("/api/cart/items/:code", handler.UpdateItem)
	router.DELETE("/api/cart/items/:code", handler.RemoveItem)
	router.POST("/api/cart/clear", handler.Empty)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string, from *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if from != nil {
		for _, c := range from.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddItemUnknownProductRejected(t *testing.T) {
	router := newCartRouter(t, &stubProducts{products: map[string]*catalog.Product{}})

	rec := doJSON(t, router, http.MethodPost, "/api/cart/items", `{"productCode":"BB-404"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestAddItemUnavailableProductRejected(t *testing.T) {
	router := newCartRouter(t, &stubProducts{products: map[string]*catalog.Product{
		"BB-1": {ProductCode: "BB-1", Title: "Tote", PriceCents: 4900, Available: false},
	}})

	rec := doJSON(t, router, http.MethodPost, "/api/cart/items", `{"productCode":"BB-1"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestCartPersistsAcrossRequests(t *testing.T) {
	router := newCartRouter(t, &stubProducts{products: map[string]*catalog.Product{
		"BB-1": {ProductCode: "BB-1", Title: "Tote", PriceCents: 4900, Available: true},
	}})

	add := doJSON(t, router, http.MethodPost, "/api/cart/items", `{"productCode":"BB-1","quantity":2}`, nil)
	if add.Code != http.StatusOK {
		t.Fatalf("add status = %d: %s", add.Code, add.Body.String())
	}

	show := doJSON(t, router, http.MethodGet, "/api/cart", "", add)
	if show.Code != http.StatusOK {
		t.Fatalf("show status = %d", show.Code)
	}
	var body struct {
		Items      []Item `json:"items"`
		TotalCents int64  `json:"totalCents"`
	}
	if err := json.Unmarshal(show.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %#v", body.Items)
	}
	if body.TotalCents != 9800 {
		t.Fatalf("total = %d, want 9800", body.TotalCents)
	}
}

func TestCartPricesFixedAtAddTime(t *testing.T) {
	// カート追加後に商品価格が変わっても、カート内の単価は変わらない。
	products := &stubProducts{products: map[string]*catalog.Product{
		"BB-1": {ProductCode: "BB-1", Title: "Tote", PriceCents: 4900, Available: true},
	}}
	router := newCartRouter(t, products)

	add := doJSON(t, router, http.MethodPost, "/api/cart/items", `{"productCode":"BB-1"}`, nil)

	products.products["BB-1"].PriceCents = 9900

	show := doJSON(t, router, http.MethodGet, "/api/cart", "", add)
	var body struct {
		TotalCents int64 `json:"totalCents"`
	}
	if err := json.Unmarshal(show.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.TotalCents != 4900 {
		t.Fatalf("total = %d, want the price at add time (4900)", body.TotalCents)
	}
}

func TestClearCart(t *testing.T) {
	router := newCartRouter(t, &stubProducts{products: map[string]*catalog.Product{
		"BB-1": {ProductCode: "BB-1", Title: "Tote", PriceCents: 4900, Available: true},
	}})

	add := doJSON(t, router, http.MethodPost, "/api/cart/items", `{"productCode":"BB-1"}`, nil)
	clear := doJSON(t, router, http.MethodPost, "/api/cart/clear", "", add)
	if clear.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", clear.Code)
	}

	show := doJSON(t, router, http.MethodGet, "/api/cart", "", clear)
	var body struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(show.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Items) != 0 {
		t.Fatalf("expected empty cart, got %#v", body.Items)
	}
}
