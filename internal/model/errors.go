// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// クライアントに返す原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, conflict, not_found, system
	Action   string // クライアント向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeUsernameTaken    = "USERNAME_TAKEN"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// エラーカテゴリ
const (
	CategoryValidation = "validation"
	CategoryConflict   = "conflict"
	CategoryNotFound   = "not_found"
	CategorySystem     = "system"
)

// NewUserValidationError はユーザー作成時の必須項目欠落エラーを生成する。
// missingには欠落していたフィールド名を渡す。
func NewUserValidationError(missing []string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "Username, name, and password are required",
		Category: CategoryValidation,
		Action:   fmt.Sprintf("missing fields: %s", strings.Join(missing, ", ")),
	}
}

// NewBlogValidationError はブログ作成時の必須項目欠落エラーを生成する。
func NewBlogValidationError(missing []string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "Title, author, and userId are required",
		Category: CategoryValidation,
		Action:   fmt.Sprintf("missing fields: %s", strings.Join(missing, ", ")),
	}
}

// NewFieldRangeError は値が保存可能な範囲を超えている場合のエラーを生成する。
func NewFieldRangeError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("%s is out of range", field),
		Category: CategoryValidation,
		Action:   fmt.Sprintf("Send a shorter or smaller value for %s.", field),
	}
}

// NewInvalidRequestError はリクエストボディが解釈できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Invalid request body",
		Category: CategoryValidation,
		Action:   "Send a JSON object with the documented fields.",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("Username is already taken: %s", username),
		Category: CategoryConflict,
		Action:   "Choose a different username.",
	}
}

// NewUserNotFoundError は参照先ユーザーが存在しない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("User not found: %s", userID),
		Category: CategoryNotFound,
		Action:   "Check the userId of an existing user.",
	}
}

// NewInternalError はクライアントに詳細を見せない内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error",
		Category: CategorySystem,
		Action:   "Retry later.",
	}
}
