// Package orders は注文の永続化と非同期の注文処理を担います。
package orders

import (
	"time"

	"github.com/google/uuid"
)

// Status は注文の処理状態を表します。
type Status string

const (
	StatusPlaced     Status = "placed"
	StatusProcessing Status = "processing"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
)

// Item は注文の1行です。単価と商品名は注文時点の値を固定します。
type Item struct {
	ProductCode    string `json:"productCode"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// Order は注文本体です。
type Order struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	Items      []Item    `json:"items"`
	TotalCents int64     `json:"totalCents"`
	Address    string    `json:"address"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProgressInfo は処理進捗の補足情報を表します。
type ProgressInfo struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorInfo は処理失敗時のエラー情報を保持します。
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Record は非同期処理から見た注文の現在状態です。
type Record struct {
	OrderID   string       `json:"orderId"`
	Status    Status       `json:"status"`
	Progress  ProgressInfo `json:"progress"`
	Error     *ErrorInfo   `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
