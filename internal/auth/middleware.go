package auth

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bestbags/internal/catalog"
	"github.com/yourusername/bestbags/internal/users"
)

// ContextUserKey は、ハンドラー間で解決済みプリンシパルを共有するためのキーです。
const ContextUserKey = "auth.user"

// contextViewKey は ViewContext を保持するキーです。
const contextViewKey = "auth.viewContext"

// CategoryLister はナビゲーション用のカテゴリ一覧を提供します。
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

// ViewContext はビュー層へ渡す横断的なリクエスト文脈です。
// リクエストオブジェクトへの暗黙のフィールド追加ではなく、
// 型付きの値として1箇所にまとめて受け渡します。
type ViewContext struct {
	LoggedIn    bool               `json:"login"`
	CurrentUser *users.User        `json:"currentUser"`
	Categories  []catalog.Category `json:"categories"`
	Notices     []Notice           `json:"notices"`
}

// Middleware はリクエストごとのアイデンティティ解決を担います。
type Middleware struct {
	bridge     *Bridge
	categories CategoryLister
	logger     *log.Logger
}

// NewMiddleware は Middleware を作成します。
func NewMiddleware(bridge *Bridge, categories CategoryLister, logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return &Middleware{bridge: bridge, categories: categories, logger: logger}
}

// Identity はリクエストごとに1回実行されるミドルウェアを返します。
// セッション参照からプリンシパルを解決し、フラッシュ通知を消費し、
// ナビゲーション用カテゴリを添えた ViewContext をリクエスト文脈へ載せます。
// 文脈の収集に失敗した場合は生のエラーを返さず、安全なルートへ退避します。
func (m *Middleware) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := m.bridge.Resolve(c)
		notices := consumeNotices(c)

		categories, err := m.categories.ListCategories(c.Request.Context())
		if err != nil {
			m.logger.Printf("failed to gather view context: %v", err)
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}

		view := &ViewContext{
			LoggedIn:    user != nil,
			CurrentUser: user,
			Categories:  categories,
			Notices:     notices,
		}
		c.Set(contextViewKey, view)
		if user != nil {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}
}

// RequireLogin は未ログインのリクエストを拒否するミドルウェアを返します。
func (m *Middleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "login required",
			})
			return
		}
		c.Next()
	}
}

// RequireAdminToken は X-Admin-Token ヘッダーを検証するミドルウェアを返します。
// トークンが未設定の環境では管理APIを全面的に閉じます。
func RequireAdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":    "ADMIN_DISABLED",
				"message": "admin API is not configured",
			})
			return
		}
		received := c.GetHeader("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(received)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "ADMIN_TOKEN_INVALID",
				"message": "admin token mismatch",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser は Identity が解決したプリンシパルを返します。未ログインなら nil です。
func CurrentUser(c *gin.Context) *users.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*users.User)
	if !ok {
		return nil
	}
	return user
}

// ViewContextFrom は Identity が設定した ViewContext を取り出します。
func ViewContextFrom(c *gin.Context) (*ViewContext, bool) {
	value, ok := c.Get(contextViewKey)
	if !ok {
		return nil, false
	}
	view, ok := value.(*ViewContext)
	return view, ok
}
