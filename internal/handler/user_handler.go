package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bloglist/internal/model"
)

// UserServiceInterface はユーザー登録に必要なサービスインターフェース。
type UserServiceInterface interface {
	// CreateUser はユーザーを登録する。入力不備はVALIDATION_FAILED、
	// username重複はUSERNAME_TAKENのAPIErrorを返す。
	CreateUser(ctx context.Context, in model.CreateUserInput) (*model.User, error)
}

// UserListerInterface はユーザー一覧（所有ブログ付き）の取得インターフェース。
type UserListerInterface interface {
	ListUsers(ctx context.Context) ([]model.UserWithBlogs, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	lister  UserListerInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, lister UserListerInterface) *UserHandler {
	return &UserHandler{
		service: service,
		lister:  lister,
	}
}

// createUserRequest はユーザー登録リクエストのボディ。
type createUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// blogSummaryResponse はユーザーに埋め込むブログの表現。
type blogSummaryResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
}

// userResponse はユーザーのレスポンス表現。パスワードハッシュは含めない。
type userResponse struct {
	ID       string                `json:"id"`
	Username string                `json:"username"`
	Name     string                `json:"name"`
	Blogs    []blogSummaryResponse `json:"blogs"`
}

// ListUsers は全ユーザーを所有ブログ付きで返す。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.lister.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u.User, u.Blogs))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateUser はユーザーを登録する。
// POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	u, err := h.service.CreateUser(r.Context(), model.CreateUserInput{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(*u, nil))
}

func toUserResponse(u model.User, blogs []model.Blog) userResponse {
	summaries := make([]blogSummaryResponse, 0, len(blogs))
	for _, b := range blogs {
		summaries = append(summaries, blogSummaryResponse{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			URL:    b.URL,
			Likes:  b.Likes,
		})
	}
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Blogs:    summaries,
	}
}
