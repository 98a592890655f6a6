package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/bloglist/internal/model"
)

// blogRow はblogsテーブルの1行を表す。
type blogRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Author    string    `db:"author"`
	URL       string    `db:"url"`
	Likes     int       `db:"likes"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r blogRow) toModel() model.Blog {
	return model.Blog{
		ID:        r.ID,
		Title:     r.Title,
		Author:    r.Author,
		URL:       r.URL,
		Likes:     r.Likes,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

// blogWithUserRow はblogsとusersをJOINした1行を表す。
type blogWithUserRow struct {
	blogRow
	UserUsername  string    `db:"user_username"`
	UserName      string    `db:"user_name"`
	UserCreatedAt time.Time `db:"user_created_at"`
}

// PostgresBlogRepo はPostgreSQLを使用したブログリポジトリ。
type PostgresBlogRepo struct {
	db *sqlx.DB
}

// NewPostgresBlogRepo はPostgresBlogRepoを生成する。
func NewPostgresBlogRepo(db *sqlx.DB) *PostgresBlogRepo {
	return &PostgresBlogRepo{db: db}
}

// Create はブログを作成する。
// 1回のINSERTでブログと所有関係が同時に確定するため、中間状態は存在しない。
func (r *PostgresBlogRepo) Create(ctx context.Context, blog *model.Blog) error {
	row := blogRow{
		ID:        blog.ID,
		Title:     blog.Title,
		Author:    blog.Author,
		URL:       blog.URL,
		Likes:     blog.Likes,
		UserID:    blog.UserID,
		CreatedAt: blog.CreatedAt,
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO blogs (id, title, author, url, likes, user_id, created_at)
		 VALUES (:id, :title, :author, :url, :likes, :user_id, :created_at)`,
		row,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("failed to insert blog: %w", ErrUserReference)
		}
		if isOutOfRange(err) {
			return fmt.Errorf("failed to insert blog: %w", ErrValueOutOfRange)
		}
		return fmt.Errorf("failed to insert blog: %w", err)
	}
	return nil
}

// List は全ブログを作成順で取得する。
func (r *PostgresBlogRepo) List(ctx context.Context) ([]model.Blog, error) {
	var rows []blogRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, title, author, url, likes, user_id, created_at FROM blogs ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}

	blogs := make([]model.Blog, 0, len(rows))
	for _, row := range rows {
		blogs = append(blogs, row.toModel())
	}
	return blogs, nil
}

// ListWithUsers は全ブログを所有ユーザー付きで作成順に取得する。
// JOIN 1回で取得するため、ブログ件数に比例したクエリは発行しない。
func (r *PostgresBlogRepo) ListWithUsers(ctx context.Context) ([]model.BlogWithUser, error) {
	var rows []blogWithUserRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at,
		        u.username AS user_username, u.name AS user_name, u.created_at AS user_created_at
		 FROM blogs b
		 JOIN users u ON u.id = b.user_id
		 ORDER BY b.created_at, b.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs with users: %w", err)
	}

	blogs := make([]model.BlogWithUser, 0, len(rows))
	for _, row := range rows {
		blogs = append(blogs, model.BlogWithUser{
			Blog: row.toModel(),
			User: model.User{
				ID:        row.UserID,
				Username:  row.UserUsername,
				Name:      row.UserName,
				CreatedAt: row.UserCreatedAt,
			},
		})
	}
	return blogs, nil
}

// コンパイル時にインターフェース実装を検証する。
var _ BlogRepository = (*PostgresBlogRepo)(nil)
