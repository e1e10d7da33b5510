package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// Reader は公開APIが必要とする読み取り操作です。
type Reader interface {
	ListCategories(ctx context.Context) ([]Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
	FindProductByCode(ctx context.Context, code string) (*Product, error)
}

// Admin は管理APIが必要とする書き込み操作です。
type Admin interface {
	CreateCategory(ctx context.Context, title string) (*Category, error)
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	UpdateProduct(ctx context.Context, product *Product) (bool, error)
	SetProductImage(ctx context.Context, code, imagePath string) (bool, error)
}

// ListCategoriesHandler は GET /api/categories のハンドラーを返します。
func ListCategoriesHandler(svc Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.ListCategories(c.Request.Context())
		if err != nil {
			respondInternal(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}

// ListProductsHandler は GET /api/products のハンドラーを返します。
// 既定では購入可能な商品のみを返します。
func ListProductsHandler(svc Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.ListProducts(c.Request.Context(), ListFilter{AvailableOnly: true})
		if err != nil {
			respondInternal(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// ProductsByCategoryHandler は GET /api/categories/:slug/products のハンドラーを返します。
func ProductsByCategoryHandler(svc Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		category, err := svc.FindCategoryBySlug(c.Request.Context(), slug)
		if err != nil {
			respondInternal(c, err)
			return
		}
		if category == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "CATEGORY_NOT_FOUND",
				"message": "category not found",
			})
			return
		}

		products, err := svc.ListProducts(c.Request.Context(), ListFilter{
			CategoryID:    &category.ID,
			AvailableOnly: true,
		})
		if err != nil {
			respondInternal(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"category": category,
			"products": products,
		})
	}
}

// ProductHandler は GET /api/products/:code のハンドラーを返します。
func ProductHandler(svc Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.FindProductByCode(c.Request.Context(), c.Param("code"))
		if err != nil {
			respondInternal(c, err)
			return
		}
		if product == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "product not found",
			})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

type createCategoryRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateCategoryHandler は POST /api/admin/categories のハンドラーを返します。
func CreateCategoryHandler(svc Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "title is required",
			})
			return
		}

		category, err := svc.CreateCategory(c.Request.Context(), req.Title)
		if err != nil {
			if err == ErrDuplicateSlug {
				c.JSON(http.StatusConflict, gin.H{
					"code":    "DUPLICATE_CATEGORY",
					"message": "a category with the same slug already exists",
				})
				return
			}
			respondInternal(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

type productRequest struct {
	ProductCode  string `json:"productCode" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"priceCents" binding:"min=0"`
	CategoryID   *int64 `json:"categoryId"`
	Manufacturer string `json:"manufacturer"`
	Available    bool   `json:"available"`
}

// CreateProductHandler は POST /api/admin/products のハンドラーを返します。
func CreateProductHandler(svc Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "productCode and title are required, priceCents must be >= 0",
			})
			return
		}

		product, err := svc.CreateProduct(c.Request.Context(), &Product{
			ProductCode:  req.ProductCode,
			Title:        req.Title,
			Description:  req.Description,
			PriceCents:   req.PriceCents,
			CategoryID:   req.CategoryID,
			Manufacturer: req.Manufacturer,
			Available:    req.Available,
		})
		if err != nil {
			if err == ErrDuplicateCode {
				c.JSON(http.StatusConflict, gin.H{
					"code":    "DUPLICATE_PRODUCT",
					"message": "a product with the same code already exists",
				})
				return
			}
			respondInternal(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProductHandler は PUT /api/admin/products/:code のハンドラーを返します。
func UpdateProductHandler(svc Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "productCode and title are required, priceCents must be >= 0",
			})
			return
		}

		product := &Product{
			ProductCode:  c.Param("code"),
			Title:        req.Title,
			Description:  req.Description,
			PriceCents:   req.PriceCents,
			CategoryID:   req.CategoryID,
			Manufacturer: req.Manufacturer,
			Available:    req.Available,
		}
		updated, err := svc.UpdateProduct(c.Request.Context(), product)
		if err != nil {
			respondInternal(c, err)
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "product not found",
			})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// UploadImageHandler は POST /api/admin/products/:code/image のハンドラーを返します。
// アップロードされた内容を先頭バイトから判定し、画像以外は拒否します。
func UploadImageHandler(svc Admin, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "multipart field 'image' is required",
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondInternal(c, err)
			return
		}
		defer file.Close()

		mtype, err := mimetype.DetectReader(file)
		if err != nil {
			respondInternal(c, err)
			return
		}
		if !strings.HasPrefix(mtype.String(), "image/") {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "UNSUPPORTED_MEDIA",
				"message": fmt.Sprintf("expected an image, got %s", mtype.String()),
			})
			return
		}

		code := c.Param("code")
		filename := code + mtype.Extension()
		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			respondInternal(c, err)
			return
		}
		if err := c.SaveUploadedFile(fileHeader, filepath.Join(uploadDir, filename)); err != nil {
			respondInternal(c, err)
			return
		}

		imagePath := "/images/" + filename
		updated, err := svc.SetProductImage(c.Request.Context(), code, imagePath)
		if err != nil {
			respondInternal(c, err)
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "product not found",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"imagePath": imagePath})
	}
}

func respondInternal(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "something went wrong",
	})
}
