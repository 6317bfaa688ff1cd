package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

// PostgresStore is the relational backend. Resume content rides in a JSONB
// column; everything queried or sorted on gets its own column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, full_name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Username, p.FullName, p.Email, p.PasswordHash, p.Role, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProfileByID(ctx context.Context, id string) (Profile, error) {
	return s.scanProfile(s.db.QueryRowContext(ctx, `
		SELECT id, username, full_name, email, password_hash, role, created_at
		FROM profiles WHERE id = $1
	`, id))
}

func (s *PostgresStore) GetProfileByUsername(ctx context.Context, username string) (Profile, error) {
	return s.scanProfile(s.db.QueryRowContext(ctx, `
		SELECT id, username, full_name, email, password_hash, role, created_at
		FROM profiles WHERE username = $1
	`, username))
}

func (s *PostgresStore) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	return s.scanProfile(s.db.QueryRowContext(ctx, `
		SELECT id, username, full_name, email, password_hash, role, created_at
		FROM profiles WHERE email = $1
	`, email))
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, full_name, email, password_hash, role, created_at
		FROM profiles ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.Email, &p.PasswordHash, &p.Role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) scanProfile(row *sql.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.Email, &p.PasswordHash, &p.Role, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

// UpsertResume inserts or overwrites a resume row. It is the single write
// path for both the create flow and the autosave scheduler, so repeated
// calls with identical payloads must converge on one row.
func (s *PostgresStore) UpsertResume(ctx context.Context, r Resume) error {
	content, err := json.Marshal(r.Content)
	if err != nil {
		return fmt.Errorf("marshal resume content: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resumes (id, owner_id, title, template_id, content, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			template_id = EXCLUDED.template_id,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
	`, r.ID, r.OwnerID, r.Title, r.TemplateID, content, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert resume: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetResume(ctx context.Context, ownerID, id string) (Resume, error) {
	return s.scanResume(s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, template_id, content, updated_at
		FROM resumes WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
}

func (s *PostgresStore) ListResumes(ctx context.Context, ownerID string) ([]Resume, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, template_id, content, updated_at
		FROM resumes WHERE owner_id = $1 ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return collectResumes(rows)
}

// ListAllResumes ignores ownership and serves the admin dashboard only.
func (s *PostgresStore) ListAllResumes(ctx context.Context) ([]Resume, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, template_id, content, updated_at
		FROM resumes ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all resumes: %w", err)
	}
	return collectResumes(rows)
}

// DeleteResume is idempotent: deleting an absent row is not an error.
func (s *PostgresStore) DeleteResume(ctx context.Context, ownerID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	return nil
}

func (s *PostgresStore) scanResume(row *sql.Row) (Resume, error) {
	var r Resume
	var content []byte
	err := row.Scan(&r.ID, &r.OwnerID, &r.Title, &r.TemplateID, &content, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, fmt.Errorf("scan resume: %w", err)
	}
	if err := json.Unmarshal(content, &r.Content); err != nil {
		return Resume{}, fmt.Errorf("unmarshal resume content: %w", err)
	}
	return r, nil
}

func collectResumes(rows *sql.Rows) ([]Resume, error) {
	defer rows.Close()
	var out []Resume
	for rows.Next() {
		var r Resume
		var content []byte
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Title, &r.TemplateID, &content, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan resume: %w", err)
		}
		if err := json.Unmarshal(content, &r.Content); err != nil {
			return nil, fmt.Errorf("unmarshal resume content: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListTemplates(ctx context.Context) ([]Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, thumbnail FROM templates ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Thumbnail); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertTemplate(ctx context.Context, t Template) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, category, thumbnail)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			thumbnail = EXCLUDED.thumbnail
	`, t.ID, t.Name, t.Category, t.Thumbnail)
	if err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteTemplate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// Refresh sessions are mirrored here so sign-in survives a missing Redis.

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			expires_at = EXCLUDED.expires_at,
			revoked_at = NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM refresh_sessions
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup refresh session: %w", err)
	}
	return userID, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE refresh_sessions SET revoked_at = NOW() WHERE token_hash = $1
	`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

// SummaryCounts backs the admin stats card.
func (s *PostgresStore) SummaryCounts(ctx context.Context) (users, resumes, templates int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM resumes),
			(SELECT COUNT(*) FROM templates)
	`).Scan(&users, &resumes, &templates)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("summary counts: %w", err)
	}
	return users, resumes, templates, nil
}
