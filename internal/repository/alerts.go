package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campuscrisis/platform/internal/models"
)

// alertStore wraps the shared DB handle so each repository interface gets
// its own receiver type.
type alertStore struct {
	*SQLiteDB
}

func (s *SQLiteDB) Alerts() AlertRepository {
	return alertStore{s}
}

func (s alertStore) Create(ctx context.Context, a *models.Alert) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query, args, err := s.sb.
		Insert("alerts").
		Columns("title", "category", "severity", "status", "location", "description", "is_approved", "created_at").
		Values(a.Title, a.Category, a.Severity, a.Status, a.Location, a.Description, a.Approved, a.CreatedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building alert insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error inserting alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading alert id: %w", err)
	}
	a.ID = id
	return id, nil
}

func (s alertStore) List(ctx context.Context, limit int) ([]models.Alert, error) {
	b := s.sb.
		Select("alert_id", "title", "category", "severity", "status", "location", "description", "is_approved", "created_at").
		From("alerts").
		Where("is_approved = 1").
		OrderBy("CASE severity WHEN 'red' THEN 1 WHEN 'yellow' THEN 2 ELSE 3 END", "created_at DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building alert list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.Title, &a.Category, &a.Severity, &a.Status,
			&a.Location, &a.Description, &a.Approved, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning alert row: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}
	return alerts, nil
}

func (s alertStore) UpdateStatusByTitle(ctx context.Context, title string, status models.Status) (int64, error) {
	query, args, err := s.sb.
		Update("alerts").
		Set("status", status).
		Where("title = ?", title).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building alert update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error updating alerts: %w", err)
	}
	return res.RowsAffected()
}

func (s alertStore) DeleteByTitle(ctx context.Context, title string) (int64, error) {
	query, args, err := s.sb.Delete("alerts").Where("title = ?", title).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building alert delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting alerts: %w", err)
	}
	return res.RowsAffected()
}
