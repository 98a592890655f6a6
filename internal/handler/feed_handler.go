package handler

import (
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/bloglist/internal/model"
	"github.com/hitoshi/bloglist/internal/security"
)

// rssDocument はRSS 2.0文書のルート要素。
type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link,omitempty"`
	Description string  `xml:"description"`
	Author      string  `xml:"author,omitempty"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// FeedHandler はブログ一覧をRSSとして配信するHTTPハンドラー。
// 保存済みのテキストは入力どおりのため、descriptionのHTMLは出力時にサニタイズする。
type FeedHandler struct {
	service   BlogServiceInterface
	sanitizer security.FeedHTMLSanitizer
	now       func() time.Time
}

// NewFeedHandler はFeedHandlerを生成する。
// sanitizerがnilの場合は既定のポリシーを使用する。
func NewFeedHandler(service BlogServiceInterface, sanitizer security.FeedHTMLSanitizer) *FeedHandler {
	if sanitizer == nil {
		sanitizer = security.NewFeedHTMLSanitizer()
	}
	return &FeedHandler{service: service, sanitizer: sanitizer, now: time.Now}
}

// BlogsFeed は全ブログをRSS 2.0で返す。
// GET /api/blogs/feed.xml
func (h *FeedHandler) BlogsFeed(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.ListBlogs(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body, err := renderRSS(blogs, requestBaseURL(r), h.now(), h.sanitizer)
	if err != nil {
		slog.Error("failed to render RSS", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// renderRSS はブログ一覧からRSS 2.0文書を生成する。
// title等のテキストはXMLエンコーダーがエスケープし、descriptionはHTMLとしてサニタイズする。
func renderRSS(blogs []model.BlogWithUser, baseURL string, builtAt time.Time, sanitizer security.FeedHTMLSanitizer) ([]byte, error) {
	doc := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "bloglist",
			Link:          baseURL + "/api/blogs",
			Description:   "Blogs shared by bloglist users",
			LastBuildDate: builtAt.UTC().Format(time.RFC1123Z),
			Items:         make([]rssItem, 0, len(blogs)),
		},
	}

	for _, b := range blogs {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       b.Title,
			Link:        feedLink(b.URL),
			Description: sanitizer.Sanitize(itemDescriptionHTML(b)),
			Author:      b.Author,
			GUID:        rssGUID{IsPermaLink: "false", Value: b.ID},
			PubDate:     b.CreatedAt.UTC().Format(time.RFC1123Z),
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RSS: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// itemDescriptionHTML はitemのdescriptionとなるHTML断片を組み立てる。
func itemDescriptionHTML(b model.BlogWithUser) string {
	title := html.EscapeString(b.Title)
	if b.URL != "" {
		title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(b.URL), title)
	}
	return fmt.Sprintf("<p>%s</p><p>by <strong>%s</strong> (%d likes), shared by %s</p>",
		title,
		html.EscapeString(b.Author),
		b.Likes,
		html.EscapeString(b.User.Username),
	)
}

// feedLink はhttp, httpsの絶対URLのみをitemのlinkとして返す。
func feedLink(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return raw
}

// requestBaseURL はリクエストからスキームとホストを組み立てる。
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
