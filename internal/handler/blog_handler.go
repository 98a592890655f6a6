package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bloglist/internal/model"
)

// BlogServiceInterface はブログハンドラーが必要とするサービスインターフェース。
type BlogServiceInterface interface {
	// CreateBlog はブログを作成する。入力不備はVALIDATION_FAILED、
	// 参照先ユーザーなしはUSER_NOT_FOUNDのAPIErrorを返す。
	CreateBlog(ctx context.Context, in model.CreateBlogInput) (*model.Blog, error)
	// ListBlogs は全ブログを所有ユーザー付きで作成順に返す。
	ListBlogs(ctx context.Context) ([]model.BlogWithUser, error)
}

// BlogHandler はブログ管理のHTTPハンドラー。
type BlogHandler struct {
	service BlogServiceInterface
}

// NewBlogHandler はBlogHandlerを生成する。
func NewBlogHandler(service BlogServiceInterface) *BlogHandler {
	return &BlogHandler{service: service}
}

// createBlogRequest はブログ作成リクエストのボディ。
type createBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
	UserID string `json:"userId"`
}

// blogOwnerResponse はブログに埋め込む所有ユーザーの表現。
type blogOwnerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// blogResponse は一覧で返すブログの表現。
type blogResponse struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Author string            `json:"author"`
	URL    string            `json:"url"`
	Likes  int               `json:"likes"`
	User   blogOwnerResponse `json:"user"`
}

// createdBlogResponse は作成直後のブログの表現。userは所有ユーザーのIDのみ。
type createdBlogResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	User   string `json:"user"`
}

// ListBlogs は全ブログを所有ユーザー付きで返す。
// GET /api/blogs
func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.ListBlogs(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]blogResponse, 0, len(blogs))
	for _, b := range blogs {
		resp = append(resp, blogResponse{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			URL:    b.URL,
			Likes:  b.Likes,
			User: blogOwnerResponse{
				ID:       b.User.ID,
				Username: b.User.Username,
				Name:     b.User.Name,
			},
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateBlog はブログを作成する。
// POST /api/blogs
func (h *BlogHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var req createBlogRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	b, err := h.service.CreateBlog(r.Context(), model.CreateBlogInput{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
		UserID: req.UserID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdBlogResponse{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
		User:   b.UserID,
	})
}
