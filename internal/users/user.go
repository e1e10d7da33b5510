// Package users はユーザー（プリンシパル）の永続化を担います。
package users

import (
	"time"

	"github.com/google/uuid"
)

// User は認証済みアイデンティティのレコードです。
// PasswordHash は平文パスワードから導出された不透明な値で、
// レスポンスやログには決して含めません。
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Draft は作成前のユーザー情報です。ID と作成日時はストアが採番します。
type Draft struct {
	Username     string
	Email        string
	PasswordHash string
}
