package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SeedPassword はサンプルユーザー全員に設定される平文パスワード。
// ハッシュ化は呼び出し側が行い、Seedにはハッシュのみを渡す。
const SeedPassword = "password123"

// SeedUser はサンプルユーザーの定義を表す。
type SeedUser struct {
	Username string
	Name     string
}

// SeedBlog はサンプルブログの定義を表す。
// Ownerは所有ユーザーのUsernameを指す。
type SeedBlog struct {
	Title string
	Slug  string
	Likes int
	Owner string
}

// SampleUsers は開発環境用のサンプルユーザー。
var SampleUsers = []SeedUser{
	{Username: "john_doe", Name: "John Doe"},
	{Username: "jane_smith", Name: "Jane Smith"},
	{Username: "mike_wilson", Name: "Mike Wilson"},
	{Username: "sarah_jones", Name: "Sarah Jones"},
	{Username: "alex_brown", Name: "Alex Brown"},
}

// SampleBlogs は開発環境用のサンプルブログ。作成順に並ぶ。
var SampleBlogs = []SeedBlog{
	{Title: "Getting Started with Node.js", Slug: "nodejs-guide", Likes: 15, Owner: "john_doe"},
	{Title: "MongoDB Best Practices", Slug: "mongodb-practices", Likes: 23, Owner: "jane_smith"},
	{Title: "React Hooks Deep Dive", Slug: "react-hooks", Likes: 42, Owner: "mike_wilson"},
	{Title: "Express.js Authentication", Slug: "express-auth", Likes: 18, Owner: "sarah_jones"},
	{Title: "Docker for Developers", Slug: "docker-guide", Likes: 31, Owner: "alex_brown"},
	{Title: "JavaScript ES6 Features", Slug: "es6-features", Likes: 27, Owner: "john_doe"},
	{Title: "RESTful API Design", Slug: "restful-api", Likes: 35, Owner: "jane_smith"},
	{Title: "CSS Grid Layout", Slug: "css-grid", Likes: 19, Owner: "mike_wilson"},
	{Title: "JWT Authentication Guide", Slug: "jwt-auth", Likes: 44, Owner: "sarah_jones"},
	{Title: "Microservices Architecture", Slug: "microservices", Likes: 38, Owner: "alex_brown"},
}

// SeedResult は初期データ投入の結果を表す。
type SeedResult struct {
	Skipped      bool
	UsersCreated int
	BlogsCreated int
}

// SampleBlogURL はサンプルブログのURLを返す。
func SampleBlogURL(slug string) string {
	return "https://example.com/" + slug
}

// Seed はサンプルユーザーとサンプルブログを1トランザクションで投入する。
// usersテーブルに既にデータがある場合は何もせずSkipped=trueを返す。
// ブログのauthorには所有ユーザーのnameを設定する。
func Seed(ctx context.Context, db *sql.DB, passwordHash string) (*SeedResult, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Info("既存ユーザーが存在するため初期データ投入をスキップします", slog.Int("users", count))
		return &SeedResult{Skipped: true}, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// 作成順を保つため、created_atは1ミリ秒ずつずらす
	base := time.Now().UTC()
	seq := 0
	next := func() time.Time {
		seq++
		return base.Add(time.Duration(seq) * time.Millisecond)
	}

	type owner struct {
		id   string
		name string
	}
	owners := make(map[string]owner, len(SampleUsers))
	result := &SeedResult{}

	for _, u := range SampleUsers {
		id := uuid.New().String()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
			id, u.Username, u.Name, passwordHash, next(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert seed user %s: %w", u.Username, err)
		}
		owners[u.Username] = owner{id: id, name: u.Name}
		result.UsersCreated++
	}

	for _, b := range SampleBlogs {
		o, ok := owners[b.Owner]
		if !ok {
			return nil, fmt.Errorf("seed blog %q references unknown user %q", b.Title, b.Owner)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO blogs (id, title, author, url, likes, user_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), b.Title, o.name, SampleBlogURL(b.Slug), b.Likes, o.id, next(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert seed blog %s: %w", b.Title, err)
		}
		result.BlogsCreated++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	slog.Info("初期データを投入しました",
		slog.Int("users", result.UsersCreated),
		slog.Int("blogs", result.BlogsCreated),
	)
	return result, nil
}
