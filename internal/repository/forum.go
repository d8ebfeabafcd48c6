package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campuscrisis/platform/internal/models"
)

type forumStore struct {
	*SQLiteDB
}

func (s *SQLiteDB) Forum() ForumRepository {
	return forumStore{s}
}

func (s forumStore) Create(ctx context.Context, p *models.ForumPost) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Approved = false

	query, args, err := s.sb.
		Insert("forum_posts").
		Columns("user_name", "message", "is_approved", "created_at").
		Values(p.Author, p.Message, false, p.CreatedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building post insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error inserting post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading post id: %w", err)
	}
	p.ID = id
	return id, nil
}

// Approve only touches pending rows, so a repeat approval reports ErrNotFound.
func (s forumStore) Approve(ctx context.Context, id int64) error {
	query, args, err := s.sb.
		Update("forum_posts").
		Set("is_approved", true).
		Where("post_id = ? AND is_approved = 0", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building approve: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error approving post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s forumStore) DeletePending(ctx context.Context, id int64) error {
	query, args, err := s.sb.
		Delete("forum_posts").
		Where("post_id = ? AND is_approved = 0", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building reject: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error rejecting post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s forumStore) ListPending(ctx context.Context) ([]models.ForumPost, error) {
	return s.list(ctx, false, 0)
}

func (s forumStore) ListApproved(ctx context.Context, limit int) ([]models.ForumPost, error) {
	return s.list(ctx, true, limit)
}

func (s forumStore) list(ctx context.Context, approved bool, limit int) ([]models.ForumPost, error) {
	b := s.sb.
		Select("post_id", "user_name", "message", "is_approved", "created_at").
		From("forum_posts").
		Where("is_approved = ?", approved).
		OrderBy("created_at DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building post list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	var posts []models.ForumPost
	for rows.Next() {
		var p models.ForumPost
		if err := rows.Scan(&p.ID, &p.Author, &p.Message, &p.Approved, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}
