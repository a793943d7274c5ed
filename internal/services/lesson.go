package services

import (
	"context"

	"github.com/campushub/backend/internal/store"
	"github.com/campushub/backend/types"
	"github.com/google/uuid"
)

// LessonRepository defines persistence operations for lessons.
type LessonRepository interface {
	GetByPublicID(ctx context.Context, publicID string) (types.Lesson, error)
	List(ctx context.Context) ([]types.Lesson, error)
	Create(ctx context.Context, lesson types.Lesson) (types.Lesson, error)
	Update(ctx context.Context, lesson types.Lesson) (types.Lesson, error)
	SoftDelete(ctx context.Context, publicID string) error
}

// LessonService encapsulates lesson use-cases.
type LessonService struct {
	repo LessonRepository
}

func NewLessonService(repo LessonRepository) *LessonService {
	return &LessonService{repo: repo}
}

// Get returns a lesson by its public id. Soft-deleted lessons are
// reported as not found to callers.
func (s *LessonService) Get(ctx context.Context, publicID string) (types.Lesson, error) {
	lesson, err := s.repo.GetByPublicID(ctx, publicID)
	if err != nil {
		return types.Lesson{}, err
	}
	if lesson.IsDeleted {
		return types.Lesson{}, store.ErrNotFound
	}
	return lesson, nil
}

func (s *LessonService) List(ctx context.Context) ([]types.Lesson, error) {
	return s.repo.List(ctx)
}

func (s *LessonService) Create(ctx context.Context, lesson types.Lesson) (types.Lesson, error) {
	if lesson.PublicID == "" {
		lesson.PublicID = uuid.NewString()
	}
	return s.repo.Create(ctx, lesson)
}

func (s *LessonService) Update(ctx context.Context, lesson types.Lesson) (types.Lesson, error) {
	return s.repo.Update(ctx, lesson)
}

func (s *LessonService) Delete(ctx context.Context, publicID string) error {
	return s.repo.SoftDelete(ctx, publicID)
}
