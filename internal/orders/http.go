package orders

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/bestbags/internal/auth"
	"github.com/yourusername/bestbags/internal/cart"
)

// OrderStore は注文ハンドラーが必要とする永続化操作です。
type OrderStore interface {
	CreateOrder(ctx context.Context, order *Order) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	FindByID(ctx context.Context, orderID, userID uuid.UUID) (*Order, error)
}

// Queue は注文ハンドラーが必要とする非同期処理の入口です。
type Queue interface {
	Enqueue(ctx context.Context, orderID string) (string, error)
	GetRecord(ctx context.Context, orderID string) (*Record, error)
}

// Handler は注文のHTTPハンドラーを提供します。
type Handler struct {
	store  OrderStore
	queue  Queue
	logger *log.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(store OrderStore, queue Queue, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: store, queue: queue, logger: logger}
}

type checkoutRequest struct {
	Address string `json:"address" binding:"required"`
}

// Checkout は POST /api/orders のハンドラーです。
// セッション上のカートから注文を作成し、処理ジョブを投入してカートを空にします。
func (h *Handler) Checkout(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "login required",
		})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "address is required",
		})
		return
	}

	current := cart.Load(c)
	if len(current.Items) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    "CART_EMPTY",
			"message": "cart is empty",
		})
		return
	}

	items := make([]Item, 0, len(current.Items))
	for _, line := range current.Items {
		items = append(items, Item{
			ProductCode:    line.ProductCode,
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}
	order := &Order{
		UserID:     user.ID,
		Items:      items,
		TotalCents: current.TotalCents(),
		Address:    req.Address,
	}
	if err := h.store.CreateOrder(c.Request.Context(), order); err != nil {
		h.logger.Printf("failed to create order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "something went wrong",
		})
		return
	}

	if _, err := h.queue.Enqueue(c.Request.Context(), order.ID.String()); err != nil {
		// 注文自体は確定済み。処理ジョブの再投入は運用で対応する。
		h.logger.Printf("failed to enqueue order %s: %v", order.ID, err)
	}

	if err := cart.Clear(c); err != nil {
		h.logger.Printf("failed to clear cart after checkout: %v", err)
	}
	auth.AddNotice(c, "success", "order placed")
	c.JSON(http.StatusCreated, order)
}

// List は GET /api/orders のハンドラーです。
func (h *Handler) List(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "login required",
		})
		return
	}

	orders, err := h.store.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Printf("failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "something went wrong",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get は GET /api/orders/:id のハンドラーです。
func (h *Handler) Get(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "login required",
		})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "invalid order id",
		})
		return
	}

	order, err := h.store.FindByID(c.Request.Context(), orderID, user.ID)
	if err != nil {
		h.logger.Printf("failed to find order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "something went wrong",
		})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "ORDER_NOT_FOUND",
			"message": "order not found",
		})
		return
	}
	c.JSON(http.StatusOK, order)
}

// Status は GET /api/orders/:id/status のハンドラーです。
// 非同期処理の進行状態を返します。期限切れの場合は確定済み注文を参照させます。
func (h *Handler) Status(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "login required",
		})
		return
	}

	record, err := h.queue.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Printf("failed to get order status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "something went wrong",
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "STATUS_NOT_FOUND",
			"message": "order status has expired or does not exist",
		})
		return
	}
	c.JSON(http.StatusOK, record)
}
