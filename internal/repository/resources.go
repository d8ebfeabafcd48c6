package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuscrisis/platform/internal/models"
)

type resourceStore struct {
	*SQLiteDB
}

func (s *SQLiteDB) Resources() ResourceRepository {
	return resourceStore{s}
}

func (s resourceStore) List(ctx context.Context, limit int) ([]models.Resource, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query, args, err := s.sb.
		Select("resource_id", "name", "category", "status", "quantity", "unit", "is_available", "notes", "last_updated", "updated_by").
		From("resources").
		OrderBy("is_available DESC", "category ASC", "name ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building resource list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		var r models.Resource
		var updated sql.NullTime
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.Status, &r.Quantity,
			&r.Unit, &r.IsAvailable, &r.Notes, &updated, &r.UpdatedBy); err != nil {
			return nil, fmt.Errorf("error scanning resource row: %w", err)
		}
		if updated.Valid {
			r.LastUpdated = updated.Time
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resource rows: %w", err)
	}
	return resources, nil
}

// Update applies only the fields present in the patch. last_updated is
// always bumped.
func (s resourceStore) Update(ctx context.Context, id int64, patch ResourcePatch) error {
	b := s.sb.Update("resources").Set("last_updated", time.Now().UTC())

	if patch.Status != nil {
		b = b.Set("status", *patch.Status)
	}
	if patch.Quantity != nil {
		b = b.Set("quantity", *patch.Quantity)
	}
	if patch.Unit != nil {
		b = b.Set("unit", *patch.Unit)
	}
	if patch.IsAvailable != nil {
		b = b.Set("is_available", *patch.IsAvailable)
	}
	if patch.Notes != nil {
		b = b.Set("notes", *patch.Notes)
	}
	if patch.UpdatedBy != nil {
		b = b.Set("updated_by", *patch.UpdatedBy)
	}

	query, args, err := b.Where("resource_id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building resource update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating resource: %w", err)
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
