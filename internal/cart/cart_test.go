package cart

import "testing"

func TestCartAddMergesSameProduct(t *testing.T) {
	cart := &Cart{}
	cart.Add(Item{ProductCode: "BB-1", Title: "Tote", UnitPriceCents: 4900, Quantity: 1})
	cart.Add(Item{ProductCode: "BB-1", Title: "Tote", UnitPriceCents: 4900, Quantity: 2})

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", cart.Items[0].Quantity)
	}
}

func TestCartTotalCents(t *testing.T) {
	cart := &Cart{}
	cart.Add(Item{ProductCode: "BB-1", UnitPriceCents: 4900, Quantity: 2})
	cart.Add(Item{ProductCode: "BB-2", UnitPriceCents: 12000, Quantity: 1})

	if total := cart.TotalCents(); total != 21800 {
		t.Fatalf("total = %d, want 21800", total)
	}
}

func TestCartSetQuantity(t *testing.T) {
	cart := &Cart{}
	cart.Add(Item{ProductCode: "BB-1", UnitPriceCents: 4900, Quantity: 2})

	cart.SetQuantity("BB-1", 5)
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", cart.Items[0].Quantity)
	}

	// 0以下は行の削除になる
	cart.SetQuantity("BB-1", 0)
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %#v", cart.Items)
	}
}

func TestCartRemove(t *testing.T) {
	cart := &Cart{}
	cart.Add(Item{ProductCode: "BB-1", Quantity: 1})
	cart.Add(Item{ProductCode: "BB-2", Quantity: 1})

	cart.Remove("BB-1")
	if len(cart.Items) != 1 || cart.Items[0].ProductCode != "BB-2" {
		t.Fatalf("unexpected items after remove: %#v", cart.Items)
	}

	// 存在しない商品の削除は何もしない
	cart.Remove("BB-404")
	if len(cart.Items) != 1 {
		t.Fatalf("unexpected items: %#v", cart.Items)
	}
}
