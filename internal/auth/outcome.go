package auth

import "github.com/yourusername/bestbags/internal/users"

// 利用者向けの拒否理由。サインアップ/サインイン戦略が返す文字列は
// この4種類に限定されます。
const (
	ReasonEmailExists      = "email already exists"
	ReasonPasswordMismatch = "passwords must match"
	ReasonUnknownUser      = "user doesn't exist"
	ReasonWrongPassword    = "wrong password"
)

// Outcome は認証試行のタグ付き結果です。
// 成功（プリンシパル付き）、拒否（利用者向け理由付き）、内部エラー（原因付き）の
// いずれか1つだけが成立し、拒否理由と内部エラーが混同されることはありません。
type Outcome struct {
	user   *users.User
	reason string
	err    error
}

func success(user *users.User) Outcome {
	return Outcome{user: user}
}

func rejected(reason string) Outcome {
	return Outcome{reason: reason}
}

func failed(err error) Outcome {
	return Outcome{err: err}
}

// IsSuccess は認証が成立したかどうかを返します。
func (o Outcome) IsSuccess() bool {
	return o.user != nil
}

// IsRejected は想定内の拒否かどうかを返します。
func (o Outcome) IsRejected() bool {
	return o.reason != ""
}

// IsError は想定外の内部エラーかどうかを返します。
func (o Outcome) IsError() bool {
	return o.err != nil
}

// User は成功時のプリンシパルを返します。成功以外では nil です。
func (o Outcome) User() *users.User {
	return o.user
}

// Reason は拒否時の利用者向け理由を返します。
func (o Outcome) Reason() string {
	return o.reason
}

// Err は内部エラーの原因を返します。
func (o Outcome) Err() error {
	return o.err
}
