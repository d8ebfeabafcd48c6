package repository

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS issues (
			issue_id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			location TEXT NOT NULL,
			description TEXT NOT NULL,
			contact_info TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Reported',
			severity TEXT NOT NULL DEFAULT 'yellow',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS alerts (
			alert_id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			severity TEXT NOT NULL,
			status TEXT NOT NULL,
			location TEXT NOT NULL,
			description TEXT,
			is_approved INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS forum_posts (
			post_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_name TEXT NOT NULL,
			message TEXT NOT NULL,
			is_approved INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resources (
			resource_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 0,
			unit TEXT NOT NULL DEFAULT '',
			is_available INTEGER NOT NULL DEFAULT 1,
			notes TEXT NOT NULL DEFAULT '',
			last_updated DATETIME,
			updated_by TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'student',
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);
		CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues(created_at);
		CREATE INDEX IF NOT EXISTS idx_alerts_title ON alerts(title);
		CREATE INDEX IF NOT EXISTS idx_forum_posts_approved ON forum_posts(is_approved);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
