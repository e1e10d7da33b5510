package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yourusername/bestbags/internal/users"
)

// Credentials は1回の認証試行の間だけ存在する一時的な資格情報です。
// 永続化やログ出力は行いません。
type Credentials struct {
	Email           string
	Username        string
	Password        string
	PasswordConfirm string
}

// UserStore は戦略が資格情報ストアに要求する操作です。
// FindByEmail / FindByID は該当なしの場合 (nil, nil) を返します。
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	Create(ctx context.Context, draft users.Draft) (*users.User, error)
}

// PasswordHasher は戦略が利用するハッシュ化操作です。
type PasswordHasher interface {
	Hash(cleartext string) (string, error)
	Verify(cleartext, stored string) bool
}

// Strategies はサインアップ/サインインの判定ロジックです。
// 依存はすべてコンストラクタで明示的に注入します。
type Strategies struct {
	store  UserStore
	hasher PasswordHasher
}

// NewStrategies は Strategies を作成します。
func NewStrategies(store UserStore, hasher PasswordHasher) *Strategies {
	return &Strategies{store: store, hasher: hasher}
}

// SignUp は新規登録の試行を判定します。
// 存在チェックを先に行うのは利用者向けメッセージを出し分けるためです。
// 一意性そのものはストレージ層の一意インデックスが保証するため、
// 同時登録の競合でも二重作成は起こりません。
func (s *Strategies) SignUp(ctx context.Context, cred Credentials) Outcome {
	existing, err := s.store.FindByEmail(ctx, cred.Email)
	if err != nil {
		return failed(err)
	}
	if existing != nil {
		return rejected(ReasonEmailExists)
	}

	if cred.Password != cred.PasswordConfirm {
		return rejected(ReasonPasswordMismatch)
	}

	hash, err := s.hasher.Hash(cred.Password)
	if err != nil {
		return failed(err)
	}

	user, err := s.store.Create(ctx, users.Draft{
		Username:     cred.Username,
		Email:        cred.Email,
		PasswordHash: hash,
	})
	if err != nil {
		// 事前チェックとの間に同じ email の登録が割り込んだ場合
		if errors.Is(err, users.ErrDuplicateEmail) {
			return rejected(ReasonEmailExists)
		}
		return failed(err)
	}
	return success(user)
}

// SignIn はログインの試行を判定します。
func (s *Strategies) SignIn(ctx context.Context, cred Credentials) Outcome {
	user, err := s.store.FindByEmail(ctx, cred.Email)
	if err != nil {
		return failed(err)
	}
	if user == nil {
		return rejected(ReasonUnknownUser)
	}

	if !s.hasher.Verify(cred.Password, user.PasswordHash) {
		return rejected(ReasonWrongPassword)
	}
	return success(user)
}
