package model

import "time"

// Blog はユーザーが所有するブログエントリを表す。
// UserIDは必ず既存ユーザーを参照する。
type Blog struct {
	ID        string
	Title     string
	Author    string
	URL       string
	Likes     int
	UserID    string
	CreatedAt time.Time
}

// BlogWithUser はブログと、その所有ユーザーを表す。
type BlogWithUser struct {
	Blog
	User User
}

// CreateBlogInput はブログ作成の入力値を表す。
// Likesが未指定の場合はnil。
type CreateBlogInput struct {
	Title  string
	Author string
	URL    string
	Likes  *int
	UserID string
}
