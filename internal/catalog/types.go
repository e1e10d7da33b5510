// Package catalog は商品カタログ（カテゴリと商品）の永続化と公開APIを担います。
package catalog

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Category は商品カテゴリです。Slug はタイトルから導出され、一意です。
type Category struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product は商品です。ProductCode は一意です。
type Product struct {
	ID           int64     `json:"id"`
	ProductCode  string    `json:"productCode"`
	Title        string    `json:"title"`
	ImagePath    string    `json:"imagePath"`
	Description  string    `json:"description"`
	PriceCents   int64     `json:"priceCents"`
	CategoryID   *int64    `json:"categoryId,omitempty"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	// ErrDuplicateSlug はカテゴリスラッグの一意制約違反を表します。
	ErrDuplicateSlug = errors.New("category slug already taken")
	// ErrDuplicateCode は商品コードの一意制約違反を表します。
	ErrDuplicateCode = errors.New("product code already taken")
)

// Slugify はタイトルをURL向けのスラッグへ変換します。
// 英数字以外はハイフンに置き換え、連続するハイフンは1つにまとめます。
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
