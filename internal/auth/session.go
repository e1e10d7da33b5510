package auth

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/bestbags/internal/users"
)

const (
	// SessionCookieName はセッション参照を運ぶクッキーの名前です。
	SessionCookieName = "bb_session"

	sessionKeyUserID = "auth_user_id"
	sessionKeyFlash  = "flash_notices"
)

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds(hours int) int {
	return int((time.Duration(hours) * time.Hour).Seconds())
}

// Bridge は認証済みプリンシパルとセッションの対応付けを行います。
// セッションにはプリンシパルの ID だけを保存し、解決時には毎回ストアから
// 引き直します。キャッシュを信用しないため、削除・変更されたアカウントは
// 即座に反映されます。
type Bridge struct {
	store UserStore
}

// NewBridge は Bridge を作成します。
func NewBridge(store UserStore) *Bridge {
	return &Bridge{store: store}
}

// OnAuthenticated はプリンシパルの ID をセッションへ保存します。
// パスワードハッシュやレコード全体は保存しません。
func (b *Bridge) OnAuthenticated(c *gin.Context, user *users.User) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.ID.String())
	return session.Save()
}

// Resolve はセッションに保存された ID からプリンシパルを解決します。
// ID の欠落・不正な値・ストアのエラー・レコードの不在はすべて nil に
// 畳み込み、「未ログイン」と区別しません。
func (b *Bridge) Resolve(c *gin.Context) *users.User {
	session := sessions.Default(c)
	raw, ok := session.Get(sessionKeyUserID).(string)
	if !ok || raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	user, err := b.store.FindByID(c.Request.Context(), id)
	if err != nil || user == nil {
		return nil
	}
	return user
}

// ClearIdentity はログアウト時にセッションを破棄します。
func (b *Bridge) ClearIdentity(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}
