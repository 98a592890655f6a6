// Package security はアプリケーションのセキュリティ機能を提供する。
//
// FeedHTMLSanitizer はRSS配信時に組み立てるHTML断片をサニタイズし、
// 保存済みのURLなどがフィードリーダー上でXSSの踏み台になることを防ぐ。
// 保存データそのものは入力どおりに保持し、HTMLとして出力する時点でのみ適用する。
// PasswordHasher はパスワードをbcryptでハッシュ化し、平文を永続化させない。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// FeedHTMLSanitizer はフィード用HTMLのサニタイズ機能のインターフェースを定義する。
type FeedHTMLSanitizer interface {
	// Sanitize はHTML断片をサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, strong, em）のみを通過させ、
	// aタグのhrefはhttp, httpsの絶対URLのみ許可する。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
}

// feedHTMLSanitizer はFeedHTMLSanitizerの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type feedHTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewFeedHTMLSanitizer はFeedHTMLSanitizerの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, a, strong, em
//   - aのhref: http, httpsの絶対URLのみ（javascript:, data:, 相対URLは除去）
//   - aタグ: target="_blank" と rel="noopener noreferrer" を自動付与
func NewFeedHTMLSanitizer() FeedHTMLSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "br", "strong", "em")

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &feedHTMLSanitizer{
		policy: p,
	}
}

// Sanitize はHTML断片をサニタイズして安全なHTMLを返す。
func (s *feedHTMLSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
