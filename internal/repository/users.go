package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuscrisis/platform/internal/models"
)

type userStore struct {
	*SQLiteDB
}

func (s *SQLiteDB) Users() UserRepository {
	return userStore{s}
}

func (s userStore) Create(ctx context.Context, u *models.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}

	query, args, err := s.sb.
		Insert("users").
		Columns("name", "email", "password", "role", "created_at").
		Values(u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building user insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		// modernc/sqlite surfaces constraint failures as plain errors.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("error inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading user id: %w", err)
	}
	u.ID = id
	return id, nil
}

func (s userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query, args, err := s.sb.
		Select("user_id", "name", "email", "password", "role", "created_at").
		From("users").
		Where("email = ?", email).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building user select: %w", err)
	}

	var u models.User
	row := s.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &u, nil
}
