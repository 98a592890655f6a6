// Package events はユーザー作成・ブログ作成などのドメインイベントの発行を提供する。
// 発行はベストエフォートで、失敗しても呼び出し元の処理結果は変わらない。
package events

import (
	"context"
	"time"
)

// イベント種別
const (
	TypeUserCreated = "user.created"
	TypeBlogCreated = "blog.created"
)

// Event はドメインイベントのペイロードを表す。
type Event struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher はドメインイベントの発行インターフェース。
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher はイベントを破棄するPublisher。
// メッセージブローカーが設定されていない場合に使用する。
type NoopPublisher struct{}

// Publish は何もせずnilを返す。
func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}

var _ Publisher = NoopPublisher{}
