package response

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGStore implements Store using PostgreSQL. Consultant types and
// additional costs are typed sequences in the domain layer and JSON
// text only here, at the storage boundary.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const responseColumns = `id, rfp_document_id, title, coalesce(content, ''), status,
	project_duration_months, number_of_consultants, price_per_consultant_per_month,
	tax_rate, total_project_cost, tax_amount, final_total_cost,
	coalesce(delivery_model, ''), currency, consultant_types, additional_costs,
	coalesce(payment_terms, ''), proposal_validity_days, version, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, r *Response) error {
	types, costs, err := marshalLineItems(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into rfp_responses(
			id, rfp_document_id, title, content, status,
			project_duration_months, number_of_consultants, price_per_consultant_per_month,
			tax_rate, delivery_model, currency, consultant_types, additional_costs,
			payment_terms, proposal_validity_days, version, created_at, updated_at)
		values ($1,$2,$3,nullif($4, ''),$5,$6,$7,$8,$9,nullif($10, ''),$11,$12,$13,nullif($14, ''),$15,$16,$17,$18)
	`, r.ID, r.RFPDocumentID, r.Title, r.Content, string(r.Status),
		r.DurationMonths, r.Consultants, r.RatePerMonth,
		r.TaxRate, string(r.DeliveryModel), string(r.Currency), types, costs,
		r.PaymentTerms, r.ProposalValidityDays, r.Version, r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *PGStore) Find(ctx context.Context, id string) (*Response, error) {
	row := s.db.QueryRowContext(ctx, `select `+responseColumns+` from rfp_responses where id=$1`, id)
	return scanResponse(row)
}

func (s *PGStore) List(ctx context.Context) ([]*Response, error) {
	return s.list(ctx, `select `+responseColumns+` from rfp_responses order by created_at desc`)
}

func (s *PGStore) ListByDocument(ctx context.Context, rfpDocumentID string) ([]*Response, error) {
	return s.list(ctx, `select `+responseColumns+` from rfp_responses where rfp_document_id=$1 order by created_at desc`, rfpDocumentID)
}

func (s *PGStore) list(ctx context.Context, query string, args ...any) ([]*Response, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Response
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, r *Response, expectedVersion int64) error {
	types, costs, err := marshalLineItems(r)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		update rfp_responses set
			title=$2, content=nullif($3, ''), status=$4,
			project_duration_months=$5, number_of_consultants=$6, price_per_consultant_per_month=$7,
			tax_rate=$8, total_project_cost=$9, tax_amount=$10, final_total_cost=$11,
			delivery_model=nullif($12, ''), currency=$13, consultant_types=$14, additional_costs=$15,
			payment_terms=nullif($16, ''), proposal_validity_days=$17, updated_at=$18, version=version+1
		where id=$1 and version=$19
	`, r.ID, r.Title, r.Content, string(r.Status),
		r.DurationMonths, r.Consultants, r.RatePerMonth,
		r.TaxRate, r.TotalProjectCost, r.TaxAmount, r.FinalTotalCost,
		string(r.DeliveryModel), string(r.Currency), types, costs,
		r.PaymentTerms, r.ProposalValidityDays, r.UpdatedAt, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `select exists(select 1 from rfp_responses where id=$1)`, r.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	r.Version = expectedVersion + 1
	return nil
}

func marshalLineItems(r *Response) (types, costs []byte, err error) {
	types, err = json.Marshal(r.ConsultantTypes)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal consultant types: %w", err)
	}
	costs, err = json.Marshal(r.AdditionalCosts)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal additional costs: %w", err)
	}
	return types, costs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResponse(row rowScanner) (*Response, error) {
	var (
		r             Response
		status        string
		deliveryModel string
		currency      string
		typesJSON     []byte
		costsJSON     []byte
	)
	err := row.Scan(&r.ID, &r.RFPDocumentID, &r.Title, &r.Content, &status,
		&r.DurationMonths, &r.Consultants, &r.RatePerMonth,
		&r.TaxRate, &r.TotalProjectCost, &r.TaxAmount, &r.FinalTotalCost,
		&deliveryModel, &currency, &typesJSON, &costsJSON,
		&r.PaymentTerms, &r.ProposalValidityDays, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.Status, err = ParseStatus(status); err != nil {
		return nil, err
	}
	if r.DeliveryModel, err = ParseDeliveryModel(deliveryModel); err != nil {
		return nil, err
	}
	r.Currency, err = parseCurrency(currency)
	if err != nil {
		return nil, err
	}
	if len(typesJSON) > 0 {
		if err := json.Unmarshal(typesJSON, &r.ConsultantTypes); err != nil {
			return nil, fmt.Errorf("unmarshal consultant types: %w", err)
		}
	}
	if len(costsJSON) > 0 {
		if err := json.Unmarshal(costsJSON, &r.AdditionalCosts); err != nil {
			return nil, fmt.Errorf("unmarshal additional costs: %w", err)
		}
	}
	return &r, nil
}
