package auth

import (
	"encoding/json"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Notice は次のリクエストで一度だけ表示される通知メッセージです。
// ミドルウェアが取り出した時点でセッションから破棄されます。
type Notice struct {
	Kind    string `json:"kind"` // "success" または "error"
	Message string `json:"message"`
}

// AddNotice は通知をセッションへ積みます。
// 保存に失敗しても通知は揮発するだけなのでエラーは呼び出し元へ返しません。
func AddNotice(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	notices := decodeNotices(session.Get(sessionKeyFlash))
	notices = append(notices, Notice{Kind: kind, Message: message})

	payload, err := json.Marshal(notices)
	if err != nil {
		return
	}
	session.Set(sessionKeyFlash, string(payload))
	_ = session.Save()
}

// consumeNotices は積まれた通知をすべて取り出し、セッションから破棄します。
func consumeNotices(c *gin.Context) []Notice {
	session := sessions.Default(c)
	raw := session.Get(sessionKeyFlash)
	if raw == nil {
		return nil
	}
	session.Delete(sessionKeyFlash)
	_ = session.Save()
	return decodeNotices(raw)
}

func decodeNotices(raw any) []Notice {
	payload, ok := raw.(string)
	if !ok || payload == "" {
		return nil
	}
	var notices []Notice
	if err := json.Unmarshal([]byte(payload), &notices); err != nil {
		return nil
	}
	return notices
}
