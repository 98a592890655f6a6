package blog

import (
	"context"
	"fmt"
	"sync"

	"github.com/hitoshi/bloglist/internal/model"
	"github.com/hitoshi/bloglist/internal/repository"
)

// memoryStore はusersとblogsを保持し、外部キー制約を再現するインメモリストア。
// 挿入順が作成順となる。
type memoryStore struct {
	mu    sync.Mutex
	users []model.User
	blogs []model.Blog

	blogCreateErr error
	listErr       error
}

func (s *memoryStore) userRepo() *memoryUserRepo { return &memoryUserRepo{s} }
func (s *memoryStore) blogRepo() *memoryBlogRepo { return &memoryBlogRepo{s} }

func (s *memoryStore) addUser(id, username, name string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: id, Username: username, Name: name, PasswordHash: "hash"}
	s.users = append(s.users, u)
	return u
}

func (s *memoryStore) deleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
}

type memoryUserRepo struct{ s *memoryStore }

func (r *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return fmt.Errorf("failed to insert user: %w", repository.ErrDuplicateUsername)
		}
	}
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) List(ctx context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.listErr != nil {
		return nil, r.s.listErr
	}
	return append([]model.User(nil), r.s.users...), nil
}

type memoryBlogRepo struct{ s *memoryStore }

func (r *memoryBlogRepo) Create(ctx context.Context, blog *model.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.blogCreateErr != nil {
		return r.s.blogCreateErr
	}
	for _, u := range r.s.users {
		if u.ID == blog.UserID {
			r.s.blogs = append(r.s.blogs, *blog)
			return nil
		}
	}
	return fmt.Errorf("failed to insert blog: %w", repository.ErrUserReference)
}

func (r *memoryBlogRepo) List(ctx context.Context) ([]model.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.listErr != nil {
		return nil, r.s.listErr
	}
	return append([]model.Blog(nil), r.s.blogs...), nil
}

func (r *memoryBlogRepo) ListWithUsers(ctx context.Context) ([]model.BlogWithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.listErr != nil {
		return nil, r.s.listErr
	}
	var result []model.BlogWithUser
	for _, b := range r.s.blogs {
		for _, u := range r.s.users {
			if u.ID == b.UserID {
				result = append(result, model.BlogWithUser{Blog: b, User: u})
			}
		}
	}
	return result, nil
}
