// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisstore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bestbags/internal/auth"
	"github.com/yourusername/bestbags/internal/cart"
	"github.com/yourusername/bestbags/internal/catalog"
	"github.com/yourusername/bestbags/internal/config"
	"github.com/yourusername/bestbags/internal/database"
	"github.com/yourusername/bestbags/internal/orders"
	"github.com/yourusername/bestbags/internal/users"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// データベース接続とマイグレーション
	if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// セッションストアの設定（クッキー署名鍵は必須）
	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		"X-Admin-Token",
	}
	router.Use(cors.New(corsConfig))

	// 各層の組み立て
	userStore := users.NewStore(pool)
	catalogStore := catalog.NewStore(pool)
	hasher := auth.NewHasher(cfg.BcryptCost)
	strategies := auth.NewStrategies(userStore, hasher)
	bridge := auth.NewBridge(userStore)

	manager, err := setupOrders(cfg, pool)
	if err != nil {
		log.Fatalf("Failed to set up order processing: %v", err)
	}
	manager.StartWorkers()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = manager.Shutdown(shutdownCtx)
	}()

	// ルーティングの設定
	setupRoutes(router, cfg, routeDeps{
		strategies:   strategies,
		bridge:       bridge,
		catalogStore: catalogStore,
		orderStore:   orders.NewStore(pool),
		orderManager: manager,
	})

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newSessionStore はセッションストアを作成します。
// Redisのアドレスが設定されていればRedisに、なければ署名付きクッキーに保存します。
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(cfg.SessionMaxAgeHours),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	}

	if cfg.SessionRedisAddr != "" {
		store, err := redisstore.NewStore(10, "tcp", cfg.SessionRedisAddr, cfg.SessionRedisPass, []byte(cfg.SessionSecret))
		if err != nil {
			return nil, err
		}
		store.Options(options)
		return store, nil
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(options)
	return store, nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bestbags-api",
		"version": "0.1.0",
	})
}

type routeDeps struct {
	strategies   *auth.Strategies
	bridge       *auth.Bridge
	catalogStore *catalog.Store
	orderStore   *orders.Store
	orderManager *orders.Manager
}

// setupRoutes は API グループと各ハンドラーの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, deps routeDeps) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	// アップロード済みの商品画像を配信
	router.Static("/images", cfg.UploadDir)

	logger := log.Default()
	identity := auth.NewMiddleware(deps.bridge, deps.catalogStore, logger)
	authHandler := auth.NewHandler(deps.strategies, deps.bridge, logger)
	cartHandler := cart.NewHandler(deps.catalogStore, logger)
	orderHandler := orders.NewHandler(deps.orderStore, deps.orderManager, logger)

	api := router.Group("/api")
	api.Use(identity.Identity())
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.SignUp)
			authRoutes.POST("/signin", authHandler.SignIn)
			authRoutes.POST("/signout", authHandler.SignOut)
			authRoutes.GET("/me", authHandler.Me)
		}

		api.GET("/view-context", authHandler.ViewData)

		api.GET("/categories", catalog.ListCategoriesHandler(deps.catalogStore))
		api.GET("/categories/:slug/products", catalog.ProductsByCategoryHandler(deps.catalogStore))
		api.GET("/products", catalog.ListProductsHandler(deps.catalogStore))
		api.GET("/products/:code", catalog.ProductHandler(deps.catalogStore))

		cartRoutes := api.Group("/cart")
		{
			cartRoutes.GET("", cartHandler.Show)
			cartRoutes.POST("/items", cartHandler.AddItem)
			cartRoutes.PUT("/items/:code", cartHandler.UpdateItem)
			cartRoutes.DELETE("/items/:code", cartHandler.RemoveItem)
			cartRoutes.POST("/clear", cartHandler.Empty)
		}

		orderRoutes := api.Group("/orders")
		orderRoutes.Use(identity.RequireLogin())
		{
			orderRoutes.POST("", orderHandler.Checkout)
			orderRoutes.GET("", orderHandler.List)
			orderRoutes.GET("/:id", orderHandler.Get)
			orderRoutes.GET("/:id/status", orderHandler.Status)
		}

		adminRoutes := api.Group("/admin")
		adminRoutes.Use(auth.RequireAdminToken(cfg.AdminToken))
		{
			adminRoutes.POST("/categories", catalog.CreateCategoryHandler(deps.catalogStore))
			adminRoutes.POST("/products", catalog.CreateProductHandler(deps.catalogStore))
			adminRoutes.PUT("/products/:code", catalog.UpdateProductHandler(deps.catalogStore))
			adminRoutes.POST("/products/:code/image", catalog.UploadImageHandler(deps.catalogStore, cfg.UploadDir))
		}
	}
}
