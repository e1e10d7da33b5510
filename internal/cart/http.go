package cart

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bestbags/internal/catalog"
)

// ProductFinder はカートが必要とする商品参照です。
type ProductFinder interface {
	FindProductByCode(ctx context.Context, code string) (*catalog.Product, error)
}

// Handler はカートのHTTPハンドラーを提供します。
type Handler struct {
	products ProductFinder
	logger   *log.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(products ProductFinder, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{products: products, logger: logger}
}

// Show は GET /api/cart のハンドラーです。
func (h *Handler) Show(c *gin.Context) {
	cart := Load(c)
	c.JSON(http.StatusOK, gin.H{
		"items":      cart.Items,
		"totalCents": cart.TotalCents(),
	})
}

type addItemRequest struct {
	ProductCode string `json:"productCode" binding:"required"`
	Quantity    int    `json:"quantity"`
}

// AddItem は POST /api/cart/items のハンドラーです。
// 商品の存在と購入可否をカタログで確認してから追加します。
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "productCode is required",
		})
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	product, err := h.products.FindProductByCode(c.Request.Context(), req.ProductCode)
	if err != nil {
		h.logger.Printf("failed to look up product %q: %v", req.ProductCode, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "something went wrong",
		})
		return
	}
	if product == nil || !product.Available {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    "PRODUCT_UNAVAILABLE",
			"message": "product does not exist or is not available",
		})
		return
	}

	cart := Load(c)
	cart.Add(Item{
		ProductCode:    product.ProductCode,
		Title:          product.Title,
		UnitPriceCents: product.PriceCents,
		Quantity:       req.Quantity,
	})
	if err := Save(c, cart); err != nil {
		h.logger.Printf("failed to save cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "failed to save cart",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      cart.Items,
		"totalCents": cart.TotalCents(),
	})
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdateItem は PUT /api/cart/items/:code のハンドラーです。
func (h *Handler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "quantity is required",
		})
		return
	}

	cart := Load(c)
	cart.SetQuantity(c.Param("code"), req.Quantity)
	if err := Save(c, cart); err != nil {
		h.logger.Printf("failed to save cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "failed to save cart",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      cart.Items,
		"totalCents": cart.TotalCents(),
	})
}

// RemoveItem は DELETE /api/cart/items/:code のハンドラーです。
func (h *Handler) RemoveItem(c *gin.Context) {
	cart := Load(c)
	cart.Remove(c.Param("code"))
	if err := Save(c, cart); err != nil {
		h.logger.Printf("failed to save cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "failed to save cart",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      cart.Items,
		"totalCents": cart.TotalCents(),
	})
}

// Empty は POST /api/cart/clear のハンドラーです。
func (h *Handler) Empty(c *gin.Context) {
	if err := Clear(c); err != nil {
		h.logger.Printf("failed to clear cart: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "failed to clear cart",
		})
		return
	}
	c.Status(http.StatusNoContent)
}
