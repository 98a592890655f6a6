package repository

import (
	"errors"

	"github.com/lib/pq"
)

// リポジトリ層で識別する制約違反エラー。
var (
	// ErrDuplicateUsername はusernameのユニーク制約違反を表す。
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUserReference はblogs.user_idの外部キー制約違反を表す。
	ErrUserReference = errors.New("referenced user does not exist")
	// ErrValueOutOfRange はカラムの長さ・数値範囲を超えた値を表す。
	ErrValueOutOfRange = errors.New("value out of range for column")
)

// PostgreSQLのSQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgStringTooLong       = "22001"
	pgNumericOutOfRange   = "22003"
)

// isUniqueViolation はerrがユニーク制約違反かどうかを返す。
func isUniqueViolation(err error) bool {
	return hasPQCode(err, pgUniqueViolation)
}

// isForeignKeyViolation はerrが外部キー制約違反かどうかを返す。
func isForeignKeyViolation(err error) bool {
	return hasPQCode(err, pgForeignKeyViolation)
}

// isOutOfRange はerrが文字列長超過または数値範囲外かどうかを返す。
func isOutOfRange(err error) bool {
	return hasPQCode(err, pgStringTooLong) || hasPQCode(err, pgNumericOutOfRange)
}

func hasPQCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}
