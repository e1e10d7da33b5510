package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubCatalog struct {
	categories []Category
	products   []Product
	createErr  error
	updated    bool
	imagePath  string
}

func (s *stubCatalog) ListCategories(ctx context.Context) ([]Category, error) {
	return s.categories, nil
}

func (s *stubCatalog) FindCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	for i := range s.categories {
		if s.categories[i].Slug == slug {
			return &s.categories[i], nil
		}
	}
	return nil, nil
}

func (s *stubCatalog) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	result := []Product{}
	for _, p := range s.products {
		if filter.AvailableOnly && !p.Available {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *stubCatalog) FindProductByCode(ctx context.Context, code string) (*Product, error) {
	for i := range s.products {
		if s.products[i].ProductCode == code {
			return &s.products[i], nil
		}
	}
	return nil, nil
}

func (s *stubCatalog) CreateCategory(ctx context.Context, title string) (*Category, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	cat := Category{ID: int64(len(s.categories) + 1), Title: title, Slug: Slugify(title)}
	s.categories = append(s.categories, cat)
	return &cat, nil
}

func (s *stubCatalog) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	product.ID = int64(len(s.products) + 1)
	s.products = append(s.products, *product)
	return product, nil
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, product *Product) (bool, error) {
	return s.updated, nil
}

func (s *stubCatalog) SetProductImage(ctx context.Context, code, imagePath string) (bool, error) {
	s.imagePath = imagePath
	return s.updated, nil
}

func TestListProductsFiltersUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubCatalog{products: []Product{
		{ProductCode: "BB-1", Title: "Tote", Available: true},
		{ProductCode: "BB-2", Title: "Clutch", Available: false},
	}}

	router := gin.New()
	router.GET("/api/products", ListProductsHandler(svc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].ProductCode != "BB-1" {
		t.Fatalf("unexpected products: %#v", body.Products)
	}
}

func TestProductsByCategoryNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/categories/:slug/products", ProductsByCategoryHandler(&stubCatalog{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories/nope/products", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProductsByCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	catID := int64(7)
	svc := &stubCatalog{
		categories: []Category{{ID: catID, Title: "Totes", Slug: "totes"}},
		products: []Product{
			{ProductCode: "BB-1", CategoryID: &catID, Available: true},
			{ProductCode: "BB-2", Available: true},
		},
	}
	router := gin.New()
	router.GET("/api/categories/:slug/products", ProductsByCategoryHandler(svc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories/totes/products", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].ProductCode != "BB-1" {
		t.Fatalf("unexpected products: %#v", body.Products)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubCatalog{createErr: ErrDuplicateSlug}
	router := gin.New()
	router.POST("/api/admin/categories", CreateCategoryHandler(svc))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/categories",
		bytes.NewBufferString(`{"title":"Totes"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCreateProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubCatalog{}
	router := gin.New()
	router.POST("/api/admin/products", CreateProductHandler(svc))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products",
		bytes.NewBufferString(`{"productCode":"BB-1","title":"Tote","priceCents":4900,"available":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(svc.products) != 1 || svc.products[0].PriceCents != 4900 {
		t.Fatalf("unexpected stored product: %#v", svc.products)
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/api/admin/products/:code", UpdateProductHandler(&stubCatalog{updated: false}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/products/BB-404",
		bytes.NewBufferString(`{"productCode":"BB-404","title":"Tote","priceCents":100}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func uploadRequest(t *testing.T, path string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("image", "upload.bin")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fileWriter.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/admin/products/:code/image",
		UploadImageHandler(&stubCatalog{updated: true}, t.TempDir()))

	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/api/admin/products/BB-1/image", []byte("%PDF-1.4 not an image"))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for non-image upload: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadImageAcceptsPNG(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubCatalog{updated: true}
	router := gin.New()
	router.POST("/api/admin/products/:code/image", UploadImageHandler(svc, t.TempDir()))

	// 最小限のPNGシグネチャ
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/api/admin/products/BB-1/image", png))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if svc.imagePath != "/images/BB-1.png" {
		t.Fatalf("imagePath = %q, want /images/BB-1.png", svc.imagePath)
	}
}
