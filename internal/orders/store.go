package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store はPostgreSQLに対する注文の読み書きを提供します。
type Store struct {
	pool *pgxpool.Pool
}

// NewStore は Store を作成します。
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateOrder は注文と明細を同一トランザクションで保存します。
func (s *Store) CreateOrder(ctx context.Context, order *Order) error {
	if len(order.Items) == 0 {
		return errors.New("order has no items")
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.Status = StatusPlaced

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO orders (id, user_id, total_cents, address, status)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`
	err = tx.QueryRow(ctx, query, order.ID, order.UserID, order.TotalCents,
		order.Address, order.Status).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_code, title, unit_price_cents, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			order.ID, item.ProductCode, item.Title, item.UnitPriceCents, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// ListByUser はユーザーの注文一覧を新しい順に返します。明細も含みます。
func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT id, user_id, total_cents, address, status, created_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Address, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	for i := range orders {
		items, err := s.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// FindByID は注文を取得します。所有者が一致しない場合は存在しない扱いにします。
func (s *Store) FindByID(ctx context.Context, orderID, userID uuid.UUID) (*Order, error) {
	query := `SELECT id, user_id, total_cents, address, status, created_at
	          FROM orders WHERE id = $1 AND user_id = $2`

	var o Order
	err := s.pool.QueryRow(ctx, query, orderID, userID).Scan(
		&o.ID, &o.UserID, &o.TotalCents, &o.Address, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	items, err := s.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// UpdateStatus は注文の状態を更新します。該当がない場合は false を返します。
func (s *Store) UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) (bool, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) listItems(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product_code, title, unit_price_cents, quantity
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductCode, &item.Title, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return items, nil
}
