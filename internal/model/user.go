package model

import "time"

// User はブログを投稿するユーザーを表す。
// PasswordHashはbcryptハッシュのみを保持し、平文パスワードは保持しない。
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// UserWithBlogs はユーザーと、そのユーザーが所有するブログ一覧を表す。
// Blogsは作成順に並び、所有ブログがない場合も空スライスとなる。
type UserWithBlogs struct {
	User
	Blogs []Blog
}

// CreateUserInput はユーザー作成の入力値を表す。
type CreateUserInput struct {
	Username string
	Name     string
	Password string
}
