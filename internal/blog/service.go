// Package blog はブログ作成と、ユーザー・ブログ間の関連解決を提供する。
//
// ユーザーとブログの所有関係はブログ側のuser_idのみで保持する。
// ユーザーの所有ブログ一覧は読み取り時にuser_idから導出するため、
// ブログ作成は1回の書き込みで完結し、片側だけ更新された状態は発生しない。
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bloglist/internal/events"
	"github.com/hitoshi/bloglist/internal/model"
	"github.com/hitoshi/bloglist/internal/repository"
)

// MetricsRecorder はブログ作成の計測インターフェース。
type MetricsRecorder interface {
	RecordBlogCreated()
}

// Service はブログ管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	blogRepo  repository.BlogRepository
	publisher events.Publisher
	recorder  MetricsRecorder
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// publisher, recorderはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	blogRepo repository.BlogRepository,
	publisher events.Publisher,
	recorder MetricsRecorder,
) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		userRepo:  userRepo,
		blogRepo:  blogRepo,
		publisher: publisher,
		recorder:  recorder,
		now:       time.Now,
	}
}

// CreateBlog はブログを作成し、指定ユーザーの所有とする。
// title, author, userIdのいずれかが空の場合はバリデーションエラー、
// userIdが既存ユーザーを指さない場合はUSER_NOT_FOUNDを返し、いずれも何も永続化しない。
// likesは未指定または負の場合0になり、int32の範囲を超える場合はバリデーションエラーとなる。
func (s *Service) CreateBlog(ctx context.Context, in model.CreateBlogInput) (*model.Blog, error) {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	userID := strings.TrimSpace(in.UserID)

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if author == "" {
		missing = append(missing, "author")
	}
	if userID == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return nil, model.NewBlogValidationError(missing)
	}
	if in.Likes != nil && *in.Likes > math.MaxInt32 {
		return nil, model.NewFieldRangeError("likes")
	}

	// UUIDとして解釈できないIDは既存ユーザーを指し得ない
	if _, err := uuid.Parse(userID); err != nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if owner == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	if author != owner.Name {
		slog.Warn("ブログのauthorが所有ユーザーの名前と一致しません",
			slog.String("user_id", owner.ID),
			slog.String("author", author),
			slog.String("user_name", owner.Name),
		)
	}

	b := &model.Blog{
		ID:        uuid.New().String(),
		Title:     title,
		Author:    author,
		URL:       strings.TrimSpace(in.URL),
		Likes:     normalizeLikes(in.Likes),
		UserID:    owner.ID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.blogRepo.Create(ctx, b); err != nil {
		// 存在確認後にユーザーが削除された場合
		if errors.Is(err, repository.ErrUserReference) {
			return nil, model.NewUserNotFoundError(userID)
		}
		if errors.Is(err, repository.ErrValueOutOfRange) {
			return nil, model.NewFieldRangeError("likes")
		}
		return nil, fmt.Errorf("ブログの作成に失敗しました: %w", err)
	}

	slog.Info("ブログを作成しました",
		slog.String("blog_id", b.ID),
		slog.String("user_id", b.UserID),
	)

	if s.recorder != nil {
		s.recorder.RecordBlogCreated()
	}
	if err := s.publisher.Publish(ctx, events.Event{
		Type:       events.TypeBlogCreated,
		ID:         b.ID,
		UserID:     b.UserID,
		OccurredAt: b.CreatedAt,
	}); err != nil {
		slog.Warn("イベントの発行に失敗しました",
			slog.String("type", events.TypeBlogCreated),
			slog.String("id", b.ID),
			slog.String("error", err.Error()),
		)
	}

	return b, nil
}

// ListBlogs は全ブログを所有ユーザー付きで作成順に返す。
// ブログが存在しない場合は空スライスを返す。
func (s *Service) ListBlogs(ctx context.Context) ([]model.BlogWithUser, error) {
	blogs, err := s.blogRepo.ListWithUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("ブログ一覧の取得に失敗しました: %w", err)
	}
	if blogs == nil {
		blogs = []model.BlogWithUser{}
	}
	return blogs, nil
}

// ListUsers は全ユーザーを所有ブログ付きで作成順に返す。
// ユーザー一覧とブログ一覧の2クエリで取得し、user_idでグループ化する。
// 所有ブログがないユーザーのBlogsは空スライスとなる。
func (s *Service) ListUsers(ctx context.Context) ([]model.UserWithBlogs, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	blogs, err := s.blogRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ブログ一覧の取得に失敗しました: %w", err)
	}

	byUser := make(map[string][]model.Blog, len(users))
	for _, b := range blogs {
		byUser[b.UserID] = append(byUser[b.UserID], b)
	}

	result := make([]model.UserWithBlogs, 0, len(users))
	for _, u := range users {
		owned := byUser[u.ID]
		if owned == nil {
			owned = []model.Blog{}
		}
		result = append(result, model.UserWithBlogs{User: u, Blogs: owned})
	}
	return result, nil
}

// normalizeLikes は未指定・負数を0に丸める。
func normalizeLikes(likes *int) int {
	if likes == nil || *likes < 0 {
		return 0
	}
	return *likes
}
