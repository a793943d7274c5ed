package services

import (
	"context"

	"github.com/campushub/backend/types"
)

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	Get(ctx context.Context, id int) (types.Article, error)
	List(ctx context.Context) ([]types.Article, error)
	Create(ctx context.Context, article types.Article) (types.Article, error)
	Update(ctx context.Context, article types.Article) (types.Article, error)
	Delete(ctx context.Context, id int) error
}

// ArticleService encapsulates article use-cases.
type ArticleService struct {
	repo ArticleRepository
}

func NewArticleService(repo ArticleRepository) *ArticleService {
	return &ArticleService{repo: repo}
}

func (s *ArticleService) Get(ctx context.Context, id int) (types.Article, error) {
	return s.repo.Get(ctx, id)
}

func (s *ArticleService) List(ctx context.Context) ([]types.Article, error) {
	return s.repo.List(ctx)
}

func (s *ArticleService) Create(ctx context.Context, article types.Article) (types.Article, error) {
	return s.repo.Create(ctx, article)
}

func (s *ArticleService) Update(ctx context.Context, article types.Article) (types.Article, error) {
	return s.repo.Update(ctx, article)
}

func (s *ArticleService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
