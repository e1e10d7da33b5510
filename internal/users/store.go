package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation はPostgreSQLの一意制約違反エラーコードです。
const pgUniqueViolation = "23505"

// ErrDuplicateEmail は email の一意制約違反を表します。
// 事前チェックではなくストレージ層の一意インデックスで検出されるため、
// 同時サインアップの競合でも必ずどちらか一方だけが成功します。
var ErrDuplicateEmail = errors.New("email already taken")

// Store はPostgreSQLに対するユーザーの読み書きを提供します。
type Store struct {
	pool *pgxpool.Pool
}

// NewStore は Store を作成します。
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// normalizeEmail はストア境界での email の正規化です。照合は小文字で統一します。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail は email に一致するユーザーを返します。存在しない場合は nil を返します。
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at
	          FROM users WHERE email = $1`

	var user User
	err := s.pool.QueryRow(ctx, query, normalizeEmail(email)).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// FindByID は id に一致するユーザーを返します。存在しない場合は nil を返します。
// セッション解決からのみ利用します。
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at
	          FROM users WHERE id = $1`

	var user User
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

// Create はユーザーを作成します。email が既に存在する場合は ErrDuplicateEmail を返します。
func (s *Store) Create(ctx context.Context, draft Draft) (*User, error) {
	user := &User{
		ID:           uuid.New(),
		Username:     draft.Username,
		Email:        normalizeEmail(draft.Email),
		PasswordHash: draft.PasswordHash,
	}

	query := `INSERT INTO users (id, username, email, password_hash)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at`

	err := s.pool.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
