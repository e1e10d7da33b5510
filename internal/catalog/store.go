package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// Store はPostgreSQLに対するカタログの読み書きを提供します。
type Store struct {
	pool *pgxpool.Pool
}

// NewStore は Store を作成します。
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListCategories はナビゲーション表示順（タイトル昇順）でカテゴリ一覧を返します。
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	query := `SELECT id, title, slug, created_at FROM categories ORDER BY title`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Title, &cat.Slug, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

// FindCategoryBySlug は slug に一致するカテゴリを返します。存在しない場合は nil を返します。
func (s *Store) FindCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	query := `SELECT id, title, slug, created_at FROM categories WHERE slug = $1`

	var cat Category
	err := s.pool.QueryRow(ctx, query, slug).Scan(&cat.ID, &cat.Title, &cat.Slug, &cat.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &cat, nil
}

// CreateCategory はカテゴリを作成します。スラッグはタイトルから導出します。
func (s *Store) CreateCategory(ctx context.Context, title string) (*Category, error) {
	cat := &Category{Title: title, Slug: Slugify(title)}

	query := `INSERT INTO categories (title, slug) VALUES ($1, $2)
	          RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query, cat.Title, cat.Slug).Scan(&cat.ID, &cat.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return cat, nil
}

// ListFilter は商品一覧の絞り込み条件です。
type ListFilter struct {
	CategoryID    *int64
	AvailableOnly bool
}

// ListProducts は作成日時の降順で商品一覧を返します。
func (s *Store) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := `SELECT id, product_code, title, image_path, description, price_cents,
	                 category_id, manufacturer, available, created_at
	          FROM products
	          WHERE ($1::bigint IS NULL OR category_id = $1)
	            AND (NOT $2 OR available)
	          ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, filter.CategoryID, filter.AvailableOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.ProductCode, &p.Title, &p.ImagePath, &p.Description,
			&p.PriceCents, &p.CategoryID, &p.Manufacturer, &p.Available, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// FindProductByCode は商品コードに一致する商品を返します。存在しない場合は nil を返します。
func (s *Store) FindProductByCode(ctx context.Context, code string) (*Product, error) {
	query := `SELECT id, product_code, title, image_path, description, price_cents,
	                 category_id, manufacturer, available, created_at
	          FROM products WHERE product_code = $1`

	var p Product
	err := s.pool.QueryRow(ctx, query, code).Scan(&p.ID, &p.ProductCode, &p.Title,
		&p.ImagePath, &p.Description, &p.PriceCents, &p.CategoryID, &p.Manufacturer,
		&p.Available, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

// CreateProduct は商品を作成します。商品コードが既に存在する場合は ErrDuplicateCode を返します。
func (s *Store) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	query := `INSERT INTO products (product_code, title, image_path, description,
	                                price_cents, category_id, manufacturer, available)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query, product.ProductCode, product.Title, product.ImagePath,
		product.Description, product.PriceCents, product.CategoryID, product.Manufacturer,
		product.Available).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct は商品コードをキーに商品を更新します。該当がない場合は false を返します。
func (s *Store) UpdateProduct(ctx context.Context, product *Product) (bool, error) {
	query := `UPDATE products
	          SET title = $2, description = $3, price_cents = $4, category_id = $5,
	              manufacturer = $6, available = $7
	          WHERE product_code = $1`

	tag, err := s.pool.Exec(ctx, query, product.ProductCode, product.Title,
		product.Description, product.PriceCents, product.CategoryID,
		product.Manufacturer, product.Available)
	if err != nil {
		return false, fmt.Errorf("failed to update product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetProductImage は商品画像のパスを更新します。該当がない場合は false を返します。
func (s *Store) SetProductImage(ctx context.Context, code, imagePath string) (bool, error) {
	query := `UPDATE products SET image_path = $2 WHERE product_code = $1`

	tag, err := s.pool.Exec(ctx, query, code, imagePath)
	if err != nil {
		return false, fmt.Errorf("failed to set product image: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
