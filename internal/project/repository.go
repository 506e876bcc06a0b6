package project

import (
	"context"
	"database/sql"
	"time"
)

// RecentLimit bounds the recent-projects list; older entries are pruned on
// insert so the table cannot grow without bound.
const RecentLimit = 20

// Player preference keys stored in the config table.
const (
	ConfigPlayerVolume = "player_volume"
	ConfigPlayerMuted  = "player_muted"
)

type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListRecent(ctx context.Context) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, aspect_ratio, style_preset, model, status, video_url, thumbnail_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.AspectRatio, p.StylePreset, p.Model, p.Status,
		nullString(p.VideoURL), nullString(p.ThumbnailURL),
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}
	return r.prune(ctx)
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, aspect_ratio, style_preset, model, status, video_url, thumbnail_url, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	return r.scanProject(row)
}

func (r *SQLiteRepository) scanProject(row *sql.Row) (*Project, error) {
	var p Project
	var videoURL, thumbnailURL sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.Title, &p.AspectRatio, &p.StylePreset, &p.Model, &p.Status,
		&videoURL, &thumbnailURL, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.VideoURL = videoURL.String
	p.ThumbnailURL = thumbnailURL.String
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) ListRecent(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, aspect_ratio, style_preset, model, status, video_url, thumbnail_url, created_at, updated_at
		FROM projects ORDER BY updated_at DESC LIMIT ?
	`, RecentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		var videoURL, thumbnailURL sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&p.ID, &p.Title, &p.AspectRatio, &p.StylePreset, &p.Model, &p.Status,
			&videoURL, &thumbnailURL, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.VideoURL = videoURL.String
		p.ThumbnailURL = thumbnailURL.String
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) UpdateProject(ctx context.Context, p *Project) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET title = ?, aspect_ratio = ?, style_preset = ?, model = ?, status = ?, video_url = ?, thumbnail_url = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.AspectRatio, p.StylePreset, p.Model, p.Status,
		nullString(p.VideoURL), nullString(p.ThumbnailURL),
		p.UpdatedAt.Format(time.RFC3339), p.ID)
	return err
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

// prune drops everything past the recent window, oldest first.
func (r *SQLiteRepository) prune(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM projects WHERE id NOT IN (
			SELECT id FROM projects ORDER BY updated_at DESC LIMIT ?
		)
	`, RecentLimit)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
