package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campushub/backend/types"
	"github.com/lib/pq"
)

// ArticleRepository handles persistence for articles.
type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Get(ctx context.Context, id int) (types.Article, error) {
	const query = `
		SELECT id, title, body, conclusion, author, tags, file_path, created_at, updated_at
		FROM articles
		WHERE id = $1`
	var article types.Article
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&article.ID,
		&article.Title,
		&article.Body,
		&article.Conclusion,
		&article.Author,
		pq.Array(&article.Tags),
		&article.FilePath,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Article{}, ErrNotFound
		}
		return types.Article{}, err
	}
	return article, nil
}

func (r *ArticleRepository) List(ctx context.Context) ([]types.Article, error) {
	const query = `
		SELECT id, title, body, conclusion, author, tags, file_path, created_at, updated_at
		FROM articles
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		var article types.Article
		if err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Body,
			&article.Conclusion,
			&article.Author,
			pq.Array(&article.Tags),
			&article.FilePath,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (r *ArticleRepository) Create(ctx context.Context, article types.Article) (types.Article, error) {
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	const query = `
		INSERT INTO articles (title, body, conclusion, author, tags, file_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		article.Title,
		article.Body,
		article.Conclusion,
		article.Author,
		pq.Array(article.Tags),
		article.FilePath,
		article.CreatedAt,
		article.UpdatedAt,
	).Scan(&article.ID); err != nil {
		return types.Article{}, err
	}
	return article, nil
}

func (r *ArticleRepository) Update(ctx context.Context, article types.Article) (types.Article, error) {
	article.UpdatedAt = time.Now()

	const query = `
		UPDATE articles
		SET title = $1,
			body = $2,
			conclusion = $3,
			author = $4,
			tags = $5,
			file_path = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		article.Title,
		article.Body,
		article.Conclusion,
		article.Author,
		pq.Array(article.Tags),
		article.FilePath,
		article.UpdatedAt,
		article.ID,
	)
	if err != nil {
		return types.Article{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Article{}, err
	}
	if affected == 0 {
		return types.Article{}, ErrNotFound
	}
	return article, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM articles WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
