package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はパスワードのハッシュ化と照合のインターフェースを定義する。
type PasswordHasher interface {
	// Hash は平文パスワードから一方向ハッシュを生成する。
	Hash(plain string) (string, error)
	// Compare はハッシュと平文パスワードが一致するか検証する。一致しない場合はエラーを返す。
	Compare(hash, plain string) error
}

// bcryptHasher はbcryptを使用したPasswordHasherの実装。
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher は指定コストのbcryptハッシャーを生成する。
// costがbcryptの許容範囲外の場合はbcrypt.DefaultCostを使用する。
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

// Hash は平文パスワードのbcryptハッシュを返す。
func (h *bcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare はハッシュと平文パスワードを照合する。
func (h *bcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
