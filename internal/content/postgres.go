package content

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore implements Store using PostgreSQL. Branding lives in a
// single row keyed id=1; the upsert serializes concurrent writers at
// the database (last-writer-wins).
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CreateTemplate(ctx context.Context, t *Template) error {
	_, err := s.db.ExecContext(ctx, `
		insert into templates(id, name, description, content, category, created_at)
		values ($1,$2,nullif($3, ''),$4,$5,$6)
	`, t.ID, t.Name, t.Description, t.Content, t.Category, t.CreatedAt)
	return err
}

func (s *PGStore) FindTemplate(ctx context.Context, id string) (*Template, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, name, coalesce(description, ''), content, category, created_at
		from templates where id=$1`, id)
	var t Template
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Content, &t.Category, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PGStore) ListTemplates(ctx context.Context, category string) ([]*Template, error) {
	query := `select id, name, coalesce(description, ''), content, category, created_at from templates`
	args := []any{}
	if category != "" {
		query += ` where category=$1`
		args = append(args, category)
	}
	query += ` order by name asc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Content, &t.Category, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *PGStore) GetBranding(ctx context.Context) (*Branding, error) {
	row := s.db.QueryRowContext(ctx, `
		select coalesce(logo_url, ''), company_name, primary_color, secondary_color, font_family,
			coalesce(presentation_url, ''), coalesce(presentation_name, ''), coalesce(presentation_size, 0),
			updated_at
		from branding_settings where id=1`)
	var b Branding
	err := row.Scan(&b.LogoURL, &b.CompanyName, &b.PrimaryColor, &b.SecondaryColor, &b.FontFamily,
		&b.PresentationURL, &b.PresentationName, &b.PresentationSize, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PGStore) SaveBranding(ctx context.Context, b *Branding) error {
	_, err := s.db.ExecContext(ctx, `
		insert into branding_settings(
			id, logo_url, company_name, primary_color, secondary_color, font_family,
			presentation_url, presentation_name, presentation_size, updated_at)
		values (1, nullif($1, ''), $2, $3, $4, $5, nullif($6, ''), nullif($7, ''), nullif($8, 0), $9)
		on conflict (id) do update set
			logo_url=excluded.logo_url,
			company_name=excluded.company_name,
			primary_color=excluded.primary_color,
			secondary_color=excluded.secondary_color,
			font_family=excluded.font_family,
			presentation_url=excluded.presentation_url,
			presentation_name=excluded.presentation_name,
			presentation_size=excluded.presentation_size,
			updated_at=excluded.updated_at
	`, b.LogoURL, b.CompanyName, b.PrimaryColor, b.SecondaryColor, b.FontFamily,
		b.PresentationURL, b.PresentationName, b.PresentationSize, b.UpdatedAt)
	return err
}
