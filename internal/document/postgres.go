package document

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore implements Store using PostgreSQL. Compare-and-set updates
// are a single conditional UPDATE on (id, version).
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const rfpColumns = `id, title, client_name, file_name, file_size, file_type,
	coalesce(content, ''), status, coalesce(failure_reason, ''), version, uploaded_at, processed_at`

func (s *PGStore) CreateRFP(ctx context.Context, doc *RFPDocument) error {
	_, err := s.db.ExecContext(ctx, `
		insert into rfp_documents(id, title, client_name, file_name, file_size, file_type, status, version, uploaded_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, doc.ID, doc.Title, doc.ClientName, doc.FileName, doc.FileSize, doc.FileType, string(doc.Status), doc.Version, doc.UploadedAt)
	return err
}

func (s *PGStore) FindRFP(ctx context.Context, id string) (*RFPDocument, error) {
	row := s.db.QueryRowContext(ctx, `select `+rfpColumns+` from rfp_documents where id=$1`, id)
	return scanRFP(row)
}

func (s *PGStore) ListRFP(ctx context.Context) ([]*RFPDocument, error) {
	rows, err := s.db.QueryContext(ctx, `select `+rfpColumns+` from rfp_documents order by uploaded_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RFPDocument
	for rows.Next() {
		doc, err := scanRFP(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateRFP(ctx context.Context, doc *RFPDocument, expectedVersion int64) error {
	res, err := s.db.ExecContext(ctx, `
		update rfp_documents
		set content=nullif($2, ''), status=$3, failure_reason=nullif($4, ''), processed_at=$5, version=version+1
		where id=$1 and version=$6
	`, doc.ID, doc.Content, string(doc.Status), doc.FailureReason, doc.ProcessedAt, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a vanished row from a lost version race.
		var exists bool
		if err := s.db.QueryRowContext(ctx, `select exists(select 1 from rfp_documents where id=$1)`, doc.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	doc.Version = expectedVersion + 1
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRFP(row rowScanner) (*RFPDocument, error) {
	var (
		doc       RFPDocument
		status    string
		processed sql.NullTime
	)
	err := row.Scan(&doc.ID, &doc.Title, &doc.ClientName, &doc.FileName, &doc.FileSize, &doc.FileType,
		&doc.Content, &status, &doc.FailureReason, &doc.Version, &doc.UploadedAt, &processed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	doc.Status = st
	if processed.Valid {
		t := processed.Time
		doc.ProcessedAt = &t
	}
	return &doc, nil
}

func (s *PGStore) CreateCompany(ctx context.Context, doc *CompanyDocument) error {
	_, err := s.db.ExecContext(ctx, `
		insert into company_documents(id, title, file_name, file_size, file_type, category, content, uploaded_at)
		values ($1,$2,$3,$4,$5,$6,nullif($7, ''),$8)
	`, doc.ID, doc.Title, doc.FileName, doc.FileSize, doc.FileType, doc.Category, doc.Content, doc.UploadedAt)
	return err
}

const companyColumns = `id, title, file_name, file_size, file_type, category, coalesce(content, ''), uploaded_at`

func (s *PGStore) FindCompany(ctx context.Context, id string) (*CompanyDocument, error) {
	row := s.db.QueryRowContext(ctx, `select `+companyColumns+` from company_documents where id=$1`, id)
	var doc CompanyDocument
	err := row.Scan(&doc.ID, &doc.Title, &doc.FileName, &doc.FileSize, &doc.FileType, &doc.Category, &doc.Content, &doc.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *PGStore) ListCompany(ctx context.Context, category string) ([]*CompanyDocument, error) {
	query := `select ` + companyColumns + ` from company_documents`
	args := []any{}
	if category != "" {
		query += ` where category=$1`
		args = append(args, category)
	}
	query += ` order by uploaded_at desc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CompanyDocument
	for rows.Next() {
		var doc CompanyDocument
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.FileName, &doc.FileSize, &doc.FileType, &doc.Category, &doc.Content, &doc.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, &doc)
	}
	return out, rows.Err()
}
