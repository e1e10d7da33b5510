// Package auth は認証・セッションアイデンティティ機能を提供します。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はパスワードの一方向ハッシュ化と検証を提供します。
// bcrypt を使用するため、出力はアルゴリズムパラメータ・ソルト・ダイジェストを
// 含む自己記述形式になります。
type Hasher struct {
	cost int
}

// NewHasher は Hasher を作成します。cost が範囲外の場合はデフォルト値を使います。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文パスワードをハッシュ化します。呼び出しごとに新しいソルトが
// 生成されるため、同じ平文でも出力は毎回異なります。
func (h *Hasher) Hash(cleartext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(cleartext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify は平文パスワードを保存済みハッシュと照合します。
// 保存値が空・不正な形式の場合もエラーにせず false を返します（フェイルクローズ）。
func (h *Hasher) Verify(cleartext, stored string) bool {
	if stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(cleartext)) == nil
}
