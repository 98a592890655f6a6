package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/bloglist/internal/model"
)

// userRow はusersテーブルの1行を表す。
type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:           r.ID,
		Username:     r.Username,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sqlx.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sqlx.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Create はユーザーを作成する。
// usernameのユニーク制約違反はErrDuplicateUsernameとして返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	row := userRow{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO users (id, username, name, password_hash, created_at)
		 VALUES (:id, :username, :name, :password_hash, :created_at)`,
		row,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to insert user: %w", ErrDuplicateUsername)
		}
		if isOutOfRange(err) {
			return fmt.Errorf("failed to insert user: %w", ErrValueOutOfRange)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, username, name, password_hash, created_at FROM users WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	user := row.toModel()
	return &user, nil
}

// List は全ユーザーを作成順で取得する。
func (r *PostgresUserRepo) List(ctx context.Context) ([]model.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, username, name, password_hash, created_at FROM users ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return users, nil
}

// コンパイル時にインターフェース実装を検証する。
var _ UserRepository = (*PostgresUserRepo)(nil)
