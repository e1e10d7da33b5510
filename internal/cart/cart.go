// Package cart はセッションに紐づくショッピングカートを提供します。
// カートは匿名のままでも保持でき、ログイン後もそのまま引き継がれます。
package cart

import (
	"encoding/json"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// sessionKeyCart はセッション内でカートJSONを保持するキーです。
const sessionKeyCart = "cart"

// Item はカート内の1行です。単価は追加時点の値を保持します。
type Item struct {
	ProductCode    string `json:"productCode"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// Cart はセッションに保存されるカート本体です。
type Cart struct {
	Items []Item `json:"items"`
}

// TotalCents はカートの合計金額を返します。
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.UnitPriceCents * int64(item.Quantity)
	}
	return total
}

// Add は商品をカートへ追加します。既にある場合は数量を加算します。
func (c *Cart) Add(item Item) {
	for i := range c.Items {
		if c.Items[i].ProductCode == item.ProductCode {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity は商品の数量を指定値に置き換えます。0以下なら行を削除します。
func (c *Cart) SetQuantity(productCode string, quantity int) {
	if quantity <= 0 {
		c.Remove(productCode)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductCode == productCode {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Remove は商品の行をカートから取り除きます。
func (c *Cart) Remove(productCode string) {
	for i := range c.Items {
		if c.Items[i].ProductCode == productCode {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Load はセッションからカートを復元します。
// 保存データが欠損・破損している場合は空のカートから始めます。
func Load(c *gin.Context) *Cart {
	session := sessions.Default(c)
	raw, ok := session.Get(sessionKeyCart).(string)
	if !ok || raw == "" {
		return &Cart{}
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return &Cart{}
	}
	return &cart
}

// Save はカートをセッションへ書き戻します。
func Save(c *gin.Context, cart *Cart) error {
	encoded, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	session := sessions.Default(c)
	session.Set(sessionKeyCart, string(encoded))
	return session.Save()
}

// Clear はセッションからカートを取り除きます。
func Clear(c *gin.Context) error {
	session := sessions.Default(c)
	session.Delete(sessionKeyCart)
	return session.Save()
}
