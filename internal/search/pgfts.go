package search

import (
	"context"
	"database/sql"
	"fmt"
)

// PgFTS is the always-available fallback: an ILIKE scan over the resume
// rows. Good enough for one user's documents.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

func (p *PgFTS) Search(ctx context.Context, q Query) ([]ResumeRecord, int, error) {
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}

	pattern := "%" + q.Text + "%"
	query := `
		SELECT id, owner_id, title,
			COALESCE(content->'personalInfo'->>'fullName', ''),
			COALESCE(content->'personalInfo'->>'objective', ''),
			EXTRACT(EPOCH FROM updated_at)::bigint
		FROM resumes
		WHERE ($1 = '' OR owner_id = $1)
		  AND (title ILIKE $2
			OR content->'personalInfo'->>'fullName' ILIKE $2
			OR content->'personalInfo'->>'objective' ILIKE $2
			OR content->>'skills' ILIKE $2)
		ORDER BY updated_at DESC
		LIMIT $3
	`
	rows, err := p.db.QueryContext(ctx, query, q.OwnerID, pattern, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("pg search: %w", err)
	}
	defer rows.Close()

	var out []ResumeRecord
	for rows.Next() {
		var rec ResumeRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.FullName, &rec.Objective, &rec.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan search row: %w", err)
		}
		out = append(out, rec)
	}
	return out, len(out), rows.Err()
}
