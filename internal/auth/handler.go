package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler は認証まわりのHTTPハンドラーを提供します。
type Handler struct {
	strategies *Strategies
	bridge     *Bridge
	logger     *log.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(strategies *Strategies, bridge *Bridge, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{strategies: strategies, bridge: bridge, logger: logger}
}

type signUpRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp は POST /api/auth/signup のハンドラーです。
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "username, email, password and passwordConfirm are required",
		})
		return
	}

	outcome := h.strategies.SignUp(c.Request.Context(), Credentials{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})

	switch {
	case outcome.IsRejected():
		AddNotice(c, "error", outcome.Reason())
		c.JSON(signUpRejectionStatus(outcome.Reason()), gin.H{
			"code":    "SIGNUP_REJECTED",
			"message": outcome.Reason(),
		})
	case outcome.IsError():
		// 内部の詳細はクライアントへ漏らさない
		h.logger.Printf("signup failed: %v", outcome.Err())
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "something went wrong",
		})
	default:
		if err := h.bridge.OnAuthenticated(c, outcome.User()); err != nil {
			h.logger.Printf("failed to save session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "SESSION_SAVE_FAILED",
				"message": "failed to establish session",
			})
			return
		}
		AddNotice(c, "success", "account created")
		c.JSON(http.StatusCreated, outcome.User())
	}
}

// SignIn は POST /api/auth/signin のハンドラーです。
func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "email and password are required",
		})
		return
	}

	outcome := h.strategies.SignIn(c.Request.Context(), Credentials{
		Email:    req.Email,
		Password: req.Password,
	})

	switch {
	case outcome.IsRejected():
		AddNotice(c, "error", outcome.Reason())
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "SIGNIN_REJECTED",
			"message": outcome.Reason(),
		})
	case outcome.IsError():
		h.logger.Printf("signin failed: %v", outcome.Err())
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "something went wrong",
		})
	default:
		if err := h.bridge.OnAuthenticated(c, outcome.User()); err != nil {
			h.logger.Printf("failed to save session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "SESSION_SAVE_FAILED",
				"message": "failed to establish session",
			})
			return
		}
		c.JSON(http.StatusOK, outcome.User())
	}
}

// SignOut は POST /api/auth/signout のハンドラーです。
func (h *Handler) SignOut(c *gin.Context) {
	if err := h.bridge.ClearIdentity(c); err != nil {
		h.logger.Printf("failed to clear session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "failed to destroy session",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me は GET /api/auth/me のハンドラーです。
func (h *Handler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "UNAUTHORIZED",
			"message": "login required",
		})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ViewData は GET /api/view-context のハンドラーです。
// ビュー層が必要とする横断的な文脈（ログイン状態・カテゴリ・通知）を返します。
func (h *Handler) ViewData(c *gin.Context) {
	view, ok := ViewContextFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "view context is not available",
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

// signUpRejectionStatus は拒否理由をHTTPステータスへ対応付けます。
func signUpRejectionStatus(reason string) int {
	if reason == ReasonEmailExists {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}
