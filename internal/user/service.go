// Package user はユーザー登録のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/bloglist/internal/events"
	"github.com/hitoshi/bloglist/internal/model"
	"github.com/hitoshi/bloglist/internal/repository"
	"github.com/hitoshi/bloglist/internal/security"
)

// maxTextLength はusers.username, users.nameのカラム長（文字数）。
const maxTextLength = 255

// MetricsRecorder はユーザー作成の計測インターフェース。
type MetricsRecorder interface {
	RecordUserCreated()
}

// Service はユーザー管理のサービス層。
// 登録処理のビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	hasher    security.PasswordHasher
	publisher events.Publisher
	recorder  MetricsRecorder
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// publisher, recorderはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	publisher events.Publisher,
	recorder MetricsRecorder,
) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		publisher: publisher,
		recorder:  recorder,
		now:       time.Now,
	}
}

// CreateUser はユーザーを登録する。
// username, name, passwordのいずれかが空の場合はバリデーションエラーを返し、何も永続化しない。
// パスワードはbcryptハッシュとしてのみ保存し、平文はログにも出力しない。
// 作成直後のユーザーは所有ブログを持たない。
func (s *Service) CreateUser(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	name := strings.TrimSpace(in.Name)

	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if name == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Password) == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, model.NewUserValidationError(missing)
	}
	if utf8.RuneCountInString(username) > maxTextLength {
		return nil, model.NewFieldRangeError("username")
	}
	if utf8.RuneCountInString(name) > maxTextLength {
		return nil, model.NewFieldRangeError("name")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, model.NewUsernameTakenError(username)
		}
		if errors.Is(err, repository.ErrValueOutOfRange) {
			return nil, model.NewFieldRangeError("username or name")
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを作成しました",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
	)

	if s.recorder != nil {
		s.recorder.RecordUserCreated()
	}
	s.publish(ctx, events.Event{
		Type:       events.TypeUserCreated,
		ID:         u.ID,
		UserID:     u.ID,
		OccurredAt: u.CreatedAt,
	})

	return u, nil
}

// publish はイベントを発行する。失敗はWARNログのみとする。
func (s *Service) publish(ctx context.Context, ev events.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("イベントの発行に失敗しました",
			slog.String("type", ev.Type),
			slog.String("id", ev.ID),
			slog.String("error", err.Error()),
		)
	}
}
