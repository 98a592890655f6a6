// Package repository はデータ永続化のインターフェースとPostgreSQL実装を定義する。
package repository

import (
	"context"

	"github.com/hitoshi/bloglist/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// usernameが既存ユーザーと重複する場合はErrDuplicateUsernameをラップして返す。
	// カラム長を超える値はErrValueOutOfRangeをラップして返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List は全ユーザーを作成順（created_at, id）で取得する。
	List(ctx context.Context) ([]model.User, error)
}

// BlogRepository はブログデータの永続化インターフェース。
// ユーザーとブログの関連はblogs.user_idのみで保持し、ユーザー側には持たない。
type BlogRepository interface {
	// Create はブログを作成する。
	// user_idが存在しないユーザーを指す場合はErrUserReferenceをラップして返す。
	// カラムの範囲を超える値はErrValueOutOfRangeをラップして返す。
	Create(ctx context.Context, blog *model.Blog) error

	// List は全ブログを作成順（created_at, id）で取得する。
	List(ctx context.Context) ([]model.Blog, error)

	// ListWithUsers は全ブログを所有ユーザー付きで作成順に取得する。
	ListWithUsers(ctx context.Context) ([]model.BlogWithUser, error)
}
