package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campuscrisis/platform/internal/models"
)

var _ IncidentRepository = (*SQLiteDB)(nil)

func (s *SQLiteDB) Create(ctx context.Context, inc *models.Incident) (int64, error) {
	now := time.Now().UTC()
	if inc.CreatedAt.IsZero() {
		inc.CreatedAt = now
	}
	inc.UpdatedAt = inc.CreatedAt

	query, args, err := s.sb.
		Insert("issues").
		Columns("category", "location", "description", "contact_info", "status", "severity", "created_at", "updated_at").
		Values(inc.Category, inc.Location, inc.Description, inc.ContactInfo, inc.Status, inc.Severity, inc.CreatedAt, inc.UpdatedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error inserting issue: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading issue id: %w", err)
	}
	inc.ID = id
	return id, nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id int64) (*models.Incident, error) {
	query, args, err := s.sb.
		Select("issue_id", "category", "location", "description", "contact_info", "status", "severity", "created_at", "updated_at").
		From("issues").
		Where("issue_id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building select: %w", err)
	}

	var inc models.Incident
	row := s.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&inc.ID, &inc.Category, &inc.Location, &inc.Description,
		&inc.ContactInfo, &inc.Status, &inc.Severity, &inc.CreatedAt, &inc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning issue: %w", err)
	}
	return &inc, nil
}

func (s *SQLiteDB) UpdateStatus(ctx context.Context, id int64, status models.Status, severity models.Severity) error {
	query, args, err := s.sb.
		Update("issues").
		Set("status", status).
		Set("severity", severity).
		Set("updated_at", time.Now().UTC()).
		Where("issue_id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating issue: %w", err)
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

func (s *SQLiteDB) Delete(ctx context.Context, id int64) error {
	query, args, err := s.sb.Delete("issues").Where("issue_id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error deleting issue: %w", err)
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

func (s *SQLiteDB) List(ctx context.Context, f IncidentFilter) ([]models.Incident, error) {
	b := s.sb.
		Select("issue_id", "category", "location", "description", "contact_info", "status", "severity", "created_at", "updated_at").
		From("issues").
		OrderBy("created_at DESC")

	if f.Status != nil {
		b = b.Where("status = ?", *f.Status)
	}
	if f.Category != nil {
		b = b.Where("category = ?", *f.Category)
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing issues: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var inc models.Incident
		if err := rows.Scan(&inc.ID, &inc.Category, &inc.Location, &inc.Description,
			&inc.ContactInfo, &inc.Status, &inc.Severity, &inc.CreatedAt, &inc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning issue row: %w", err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issue rows: %w", err)
	}
	return incidents, nil
}

func (s *SQLiteDB) Stats(ctx context.Context) (*models.IncidentStats, error) {
	// resolved_today intentionally checks created_at, matching the
	// dashboard's historical behavior.
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN severity = 'red' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status != 'Resolved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'Resolved' AND DATE(created_at) = DATE('now') THEN 1 ELSE 0 END), 0)
		FROM issues`

	var st models.IncidentStats
	row := s.db.QueryRowContext(ctx, query)
	if err := row.Scan(&st.Total, &st.Urgent, &st.Active, &st.ResolvedToday); err != nil {
		return nil, fmt.Errorf("error scanning stats: %w", err)
	}
	return &st, nil
}
