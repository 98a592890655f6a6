package security

import (
	"strings"
	"testing"
)

// TestFeedHTMLSanitizer_Sanitize は許可リスト外のタグと危険なURLが除去されることを検証する。
func TestFeedHTMLSanitizer_Sanitize(t *testing.T) {
	sanitizer := NewFeedHTMLSanitizer()

	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:     "許可タグはそのまま",
			input:    "<p><strong>Go</strong> tips<br></p>",
			contains: []string{"<p>", "<strong>Go</strong>", "<br"},
		},
		{
			name:        "scriptは中身ごと除去",
			input:       "<p>Hello<script>alert(1)</script></p>",
			contains:    []string{"Hello"},
			notContains: []string{"<script", "alert(1)"},
		},
		{
			name:        "javascriptスキームのhrefを除去",
			input:       `<a href="javascript:alert(1)">click</a>`,
			contains:    []string{"click"},
			notContains: []string{"javascript:", "href"},
		},
		{
			name:        "相対URLのhrefを除去",
			input:       `<a href="/api/users">users</a>`,
			notContains: []string{"href"},
		},
		{
			name:     "httpsリンクにtargetとrelを付与",
			input:    `<a href="https://example.com/go">Go</a>`,
			contains: []string{`href="https://example.com/go"`, `target="_blank"`, "noreferrer"},
		},
		{
			name:        "イベント属性を除去",
			input:       `<p onclick="alert(1)">x</p>`,
			notContains: []string{"onclick"},
		},
		{
			name:     "エスケープ済みテキストは保持",
			input:    "<p>Why &lt;T&gt; beats interface{} &amp; more</p>",
			contains: []string{"&lt;T&gt;", "&amp;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("Sanitize(%q) = %q, must not contain %q", tt.input, got, unwanted)
				}
			}
		})
	}
}

// TestFeedHTMLSanitizer_Idempotent は同一入力に対して同一出力を返すことを検証する。
func TestFeedHTMLSanitizer_Idempotent(t *testing.T) {
	sanitizer := NewFeedHTMLSanitizer()
	input := `<p><a href="https://x.io">x</a> &amp; <em>y</em></p>`

	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(input)
	if first != second {
		t.Errorf("Sanitize is not deterministic: %q != %q", first, second)
	}
}
