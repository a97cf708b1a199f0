package postgres

import (
	"context"
	"fmt"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INT PRIMARY KEY,
		name TEXT NOT NULL,
		prefix CHAR(1) NOT NULL,
		color_code TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		category_id INT NOT NULL REFERENCES categories(id),
		sequence INT NOT NULL,
		formatted_code TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'waiting',
		counter INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS tickets_daily_code
		ON tickets (formatted_code, (created_at::date))`,
	`CREATE INDEX IF NOT EXISTS tickets_status_day
		ON tickets (status, (created_at::date))`,
	`CREATE TABLE IF NOT EXISTS display_settings (
		id INT PRIMARY KEY,
		video_url TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		subtitle TEXT NOT NULL DEFAULT ''
	)`,
	`INSERT INTO display_settings (id, video_url, title, subtitle)
		VALUES (1, '', 'Pentingnya Mencuci Tangan', 'Tips Kesehatan Harian')
		ON CONFLICT (id) DO NOTHING`,
}

// Migrate creates the schema and seeds the default categories.
func (s *Store) Migrate(ctx context.Context) error {
	for _, query := range migrations {
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	for _, category := range models.DefaultCategories() {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO categories (id, name, prefix, color_code)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, category.ID, category.Name, category.Prefix, category.Color)
		if err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}
	return nil
}
