package handler

import (
	"context"

	"github.com/hitoshi/bloglist/internal/model"
)

// --- モック ---

type mockUserService struct {
	createUserFn func(ctx context.Context, in model.CreateUserInput) (*model.User, error)
}

func (m *mockUserService) CreateUser(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	return m.createUserFn(ctx, in)
}

type mockBlogService struct {
	createBlogFn func(ctx context.Context, in model.CreateBlogInput) (*model.Blog, error)
	listBlogsFn  func(ctx context.Context) ([]model.BlogWithUser, error)
	listUsersFn  func(ctx context.Context) ([]model.UserWithBlogs, error)
}

func (m *mockBlogService) CreateBlog(ctx context.Context, in model.CreateBlogInput) (*model.Blog, error) {
	return m.createBlogFn(ctx, in)
}

func (m *mockBlogService) ListBlogs(ctx context.Context) ([]model.BlogWithUser, error) {
	return m.listBlogsFn(ctx)
}

func (m *mockBlogService) ListUsers(ctx context.Context) ([]model.UserWithBlogs, error) {
	return m.listUsersFn(ctx)
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}
