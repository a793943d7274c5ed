package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campushub/backend/types"
)

// LessonRepository handles persistence for lessons. Lessons are
// soft-deleted; reads go through the public uuid.
type LessonRepository struct {
	db *sql.DB
}

func NewLessonRepository(db *sql.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) GetByPublicID(ctx context.Context, publicID string) (types.Lesson, error) {
	const query = `
		SELECT id, public_id, title, description, file_path, is_deleted, created_at, updated_at
		FROM lessons
		WHERE public_id = $1`
	var lesson types.Lesson
	err := r.db.QueryRowContext(ctx, query, publicID).Scan(
		&lesson.ID,
		&lesson.PublicID,
		&lesson.Title,
		&lesson.Description,
		&lesson.FilePath,
		&lesson.IsDeleted,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Lesson{}, ErrNotFound
		}
		return types.Lesson{}, err
	}
	return lesson, nil
}

func (r *LessonRepository) List(ctx context.Context) ([]types.Lesson, error) {
	const query = `
		SELECT id, public_id, title, description, file_path, is_deleted, created_at, updated_at
		FROM lessons
		WHERE is_deleted = FALSE
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []types.Lesson
	for rows.Next() {
		var lesson types.Lesson
		if err := rows.Scan(
			&lesson.ID,
			&lesson.PublicID,
			&lesson.Title,
			&lesson.Description,
			&lesson.FilePath,
			&lesson.IsDeleted,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

func (r *LessonRepository) Create(ctx context.Context, lesson types.Lesson) (types.Lesson, error) {
	now := time.Now()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	const query = `
		INSERT INTO lessons (public_id, title, description, file_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		lesson.PublicID,
		lesson.Title,
		lesson.Description,
		lesson.FilePath,
		lesson.CreatedAt,
		lesson.UpdatedAt,
	).Scan(&lesson.ID); err != nil {
		return types.Lesson{}, err
	}
	return lesson, nil
}

func (r *LessonRepository) Update(ctx context.Context, lesson types.Lesson) (types.Lesson, error) {
	lesson.UpdatedAt = time.Now()

	const query = `
		UPDATE lessons
		SET title = $1,
			description = $2,
			file_path = $3,
			updated_at = $4
		WHERE public_id = $5 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(
		ctx,
		query,
		lesson.Title,
		lesson.Description,
		lesson.FilePath,
		lesson.UpdatedAt,
		lesson.PublicID,
	)
	if err != nil {
		return types.Lesson{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Lesson{}, err
	}
	if affected == 0 {
		return types.Lesson{}, ErrNotFound
	}
	return lesson, nil
}

func (r *LessonRepository) SoftDelete(ctx context.Context, publicID string) error {
	const query = `
		UPDATE lessons
		SET is_deleted = TRUE,
			updated_at = $1
		WHERE public_id = $2 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, time.Now(), publicID)
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
