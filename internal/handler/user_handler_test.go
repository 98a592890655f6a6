package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/bloglist/internal/model"
)

// TestUserHandler_CreateUser_Success は登録成功時に201とパスワードを含まないJSONを返すことを検証する。
func TestUserHandler_CreateUser_Success(t *testing.T) {
	var received model.CreateUserInput
	svc := &mockUserService{
		createUserFn: func(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
			received = in
			return &model.User{ID: "u1", Username: in.Username, Name: in.Name, PasswordHash: "$2a$10$hash"}, nil
		},
	}
	h := NewUserHandler(svc, nil)

	body := `{"username":"john_doe","name":"John Doe","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.CreateUser(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if received.Username != "john_doe" || received.Name != "John Doe" || received.Password != "password123" {
		t.Errorf("service input = %+v", received)
	}

	raw := w.Body.String()
	if strings.Contains(raw, "password") || strings.Contains(raw, "$2a$") {
		t.Errorf("response must not contain password or hash: %s", raw)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp["id"] != "u1" || resp["username"] != "john_doe" || resp["name"] != "John Doe" {
		t.Errorf("response = %v", resp)
	}
	blogs, ok := resp["blogs"].([]interface{})
	if !ok || len(blogs) != 0 {
		t.Errorf("blogs = %#v, want []", resp["blogs"])
	}
}

// TestUserHandler_CreateUser_InvalidBody は不正なJSONで400を返しサービスを呼ばないことを検証する。
func TestUserHandler_CreateUser_InvalidBody(t *testing.T) {
	called := false
	svc := &mockUserService{
		createUserFn: func(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
			called = true
			return nil, nil
		},
	}
	h := NewUserHandler(svc, nil)

	for _, body := range []string{"", "{not json", `{"username": 1}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
		w := httptest.NewRecorder()

		h.CreateUser(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
		var resp map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["code"] != model.ErrCodeInvalidRequest {
			t.Errorf("body %q: code = %v, want %s", body, resp["code"], model.ErrCodeInvalidRequest)
		}
	}
	if called {
		t.Error("service should not be called for invalid body")
	}
}

// TestUserHandler_CreateUser_ErrorMapping はサービスエラーのHTTPマッピングを検証する。
func TestUserHandler_CreateUser_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"validation", model.NewUserValidationError([]string{"password"}), http.StatusBadRequest, model.ErrCodeValidationFailed, "Username, name, and password are required"},
		{"duplicate", model.NewUsernameTakenError("john_doe"), http.StatusBadRequest, model.ErrCodeUsernameTaken, ""},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, model.ErrCodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{
				createUserFn: func(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
					return nil, tt.err
				},
			}
			h := NewUserHandler(svc, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"username":"u"}`))
			w := httptest.NewRecorder()

			h.CreateUser(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if resp["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", resp["code"], tt.wantCode)
			}
			if tt.wantError != "" && resp["error"] != tt.wantError {
				t.Errorf("error = %v, want %s", resp["error"], tt.wantError)
			}
			if strings.Contains(w.Body.String(), "connection refused") {
				t.Error("internal error details must not leak to client")
			}
		})
	}
}

// TestUserHandler_ListUsers はユーザー一覧のJSON形状を検証する。
func TestUserHandler_ListUsers(t *testing.T) {
	lister := &mockBlogService{
		listUsersFn: func(ctx context.Context) ([]model.UserWithBlogs, error) {
			return []model.UserWithBlogs{
				{
					User: model.User{ID: "u1", Username: "john_doe", Name: "John Doe", PasswordHash: "secret-hash"},
					Blogs: []model.Blog{
						{ID: "b1", Title: "Go", Author: "John Doe", URL: "https://x.io", Likes: 3, UserID: "u1"},
					},
				},
				{
					User:  model.User{ID: "u2", Username: "jane", Name: "Jane"},
					Blogs: []model.Blog{},
				},
			}, nil
		},
	}
	h := NewUserHandler(nil, lister)

	w := httptest.NewRecorder()
	h.ListUsers(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if strings.Contains(w.Body.String(), "secret-hash") {
		t.Error("response must not contain password hash")
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}

	blogs := resp[0]["blogs"].([]interface{})
	if len(blogs) != 1 {
		t.Fatalf("blogs = %v", blogs)
	}
	blog := blogs[0].(map[string]interface{})
	for key, want := range map[string]interface{}{"id": "b1", "title": "Go", "author": "John Doe", "url": "https://x.io", "likes": float64(3)} {
		if blog[key] != want {
			t.Errorf("blog[%s] = %v, want %v", key, blog[key], want)
		}
	}
	if _, ok := blog["user"]; ok {
		t.Error("embedded blog should not contain user")
	}

	if empty, ok := resp[1]["blogs"].([]interface{}); !ok || len(empty) != 0 {
		t.Errorf("user without blogs: blogs = %#v, want []", resp[1]["blogs"])
	}
}

// TestUserHandler_ListUsers_Empty はユーザーがいない場合に空配列を返すことを検証する。
func TestUserHandler_ListUsers_Empty(t *testing.T) {
	lister := &mockBlogService{
		listUsersFn: func(ctx context.Context) ([]model.UserWithBlogs, error) {
			return nil, nil
		},
	}
	h := NewUserHandler(nil, lister)

	w := httptest.NewRecorder()
	h.ListUsers(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestUserHandler_ListUsers_InternalError(t *testing.T) {
	lister := &mockBlogService{
		listUsersFn: func(ctx context.Context) ([]model.UserWithBlogs, error) {
			return nil, errors.New("db down")
		},
	}
	h := NewUserHandler(nil, lister)

	w := httptest.NewRecorder()
	h.ListUsers(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
