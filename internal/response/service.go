package response

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rfpdesk.io/internal/ids"
	"rfpdesk.io/internal/money"
	"rfpdesk.io/internal/pricing"
	"rfpdesk.io/internal/stream"
)

// Service drives the response lifecycle: draft → priced → finalized →
// sent, with finalized → draft reopening allowed until sent.
type Service struct {
	store  Store
	now    func() time.Time
	events *stream.Hub
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithEvents publishes lifecycle events to the hub.
func WithEvents(hub *stream.Hub) ServiceOption {
	return func(s *Service) { s.events = hub }
}

// NewService constructs a Service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the fields a caller may set on a new draft.
type CreateInput struct {
	RFPDocumentID        string
	Title                string
	Content              string
	Currency             string
	DeliveryModel        string
	DurationMonths       int
	Consultants          int
	RatePerMonth         decimal.Decimal
	TaxRate              decimal.Decimal
	ConsultantTypes      []pricing.ConsultantType
	AdditionalCosts      []pricing.AdditionalCost
	PaymentTerms         string
	ProposalValidityDays int
}

// Create opens a new draft response referencing an RFP document. The
// reference is weak: deletion of the document elsewhere is a storage
// concern, not ours.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Response, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.RFPDocumentID) == "" {
		return nil, fmt.Errorf("%w: rfp document id is required", ErrValidation)
	}
	currency, err := parseCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	model, err := ParseDeliveryModel(in.DeliveryModel)
	if err != nil {
		return nil, err
	}
	if in.ProposalValidityDays < 0 {
		return nil, fmt.Errorf("%w: proposal validity days must be >= 0", ErrValidation)
	}

	now := s.now().UTC()
	r := &Response{
		ID:                   ids.New(),
		RFPDocumentID:        in.RFPDocumentID,
		Title:                strings.TrimSpace(in.Title),
		Content:              in.Content,
		Status:               StatusDraft,
		DurationMonths:       in.DurationMonths,
		Consultants:          in.Consultants,
		RatePerMonth:         in.RatePerMonth,
		TaxRate:              in.TaxRate,
		DeliveryModel:        model,
		Currency:             currency,
		ConsultantTypes:      in.ConsultantTypes,
		AdditionalCosts:      in.AdditionalCosts,
		PaymentTerms:         in.PaymentTerms,
		ProposalValidityDays: in.ProposalValidityDays,
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.publish("response.created", r)
	return r, nil
}

// UpdateInput carries optional draft edits. Nil fields are untouched.
type UpdateInput struct {
	Title                *string
	Content              *string
	DeliveryModel        *string
	DurationMonths       *int
	Consultants          *int
	RatePerMonth         *decimal.Decimal
	TaxRate              *decimal.Decimal
	ConsultantTypes      *[]pricing.ConsultantType
	AdditionalCosts      *[]pricing.AdditionalCost
	PaymentTerms         *string
	ProposalValidityDays *int
}

func (in UpdateInput) touchesPricing() bool {
	return in.DurationMonths != nil || in.Consultants != nil || in.RatePerMonth != nil ||
		in.TaxRate != nil || in.ConsultantTypes != nil || in.AdditionalCosts != nil
}

// Update edits a draft or priced response. Editing pricing inputs on a
// priced response drops it back to draft and clears the derived
// fields; they must be recomputed. Finalized responses only accept
// Reopen or Send; sent responses accept nothing.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Response, error) {
	return s.transition(ctx, id, "response.updated", func(r *Response) error {
		switch r.Status {
		case StatusSent:
			return ErrImmutable
		case StatusFinalized:
			return fmt.Errorf("%w: reopen the response before editing", ErrInvalidState)
		}

		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return fmt.Errorf("%w: title is required", ErrValidation)
			}
			r.Title = strings.TrimSpace(*in.Title)
		}
		if in.Content != nil {
			r.Content = *in.Content
		}
		if in.DeliveryModel != nil {
			model, err := ParseDeliveryModel(*in.DeliveryModel)
			if err != nil {
				return err
			}
			r.DeliveryModel = model
		}
		if in.DurationMonths != nil {
			r.DurationMonths = *in.DurationMonths
		}
		if in.Consultants != nil {
			r.Consultants = *in.Consultants
		}
		if in.RatePerMonth != nil {
			r.RatePerMonth = *in.RatePerMonth
		}
		if in.TaxRate != nil {
			r.TaxRate = *in.TaxRate
		}
		if in.ConsultantTypes != nil {
			r.ConsultantTypes = *in.ConsultantTypes
		}
		if in.AdditionalCosts != nil {
			r.AdditionalCosts = *in.AdditionalCosts
		}
		if in.PaymentTerms != nil {
			r.PaymentTerms = *in.PaymentTerms
		}
		if in.ProposalValidityDays != nil {
			if *in.ProposalValidityDays < 0 {
				return fmt.Errorf("%w: proposal validity days must be >= 0", ErrValidation)
			}
			r.ProposalValidityDays = *in.ProposalValidityDays
		}

		if r.Status == StatusPriced && in.touchesPricing() {
			r.Status = StatusDraft
			r.clearDerived()
		}
		return nil
	})
}

// Price computes the derived totals and moves draft → priced. The
// derived fields and the status change land in one conditional write.
func (s *Service) Price(ctx context.Context, id string) (*Response, error) {
	return s.transition(ctx, id, "response.priced", func(r *Response) error {
		switch r.Status {
		case StatusSent:
			return ErrImmutable
		case StatusDraft:
		default:
			return fmt.Errorf("%w: cannot price a %s response", ErrInvalidState, r.Status)
		}

		totals, err := pricing.ComputeTotals(pricing.Input{
			Currency:        r.Currency,
			DurationMonths:  r.DurationMonths,
			Consultants:     r.Consultants,
			RatePerMonth:    r.RatePerMonth,
			TaxRate:         r.TaxRate,
			ConsultantTypes: r.ConsultantTypes,
			AdditionalCosts: r.AdditionalCosts,
		})
		if err != nil {
			return err
		}
		r.TotalProjectCost = decimal.NewNullDecimal(totals.TotalProjectCost)
		r.TaxAmount = decimal.NewNullDecimal(totals.TaxAmount)
		r.FinalTotalCost = decimal.NewNullDecimal(totals.FinalTotalCost)
		r.Status = StatusPriced
		return nil
	})
}

// Finalize moves priced → finalized. Requires non-empty content and
// payment terms.
func (s *Service) Finalize(ctx context.Context, id string) (*Response, error) {
	return s.transition(ctx, id, "response.finalized", func(r *Response) error {
		switch r.Status {
		case StatusSent:
			return ErrImmutable
		case StatusPriced:
		default:
			return fmt.Errorf("%w: cannot finalize a %s response", ErrInvalidState, r.Status)
		}
		if !r.Priced() {
			return fmt.Errorf("%w: derived pricing fields are missing", ErrInvalidState)
		}
		if strings.TrimSpace(r.Content) == "" {
			return fmt.Errorf("%w: content is required to finalize", ErrInvalidState)
		}
		if strings.TrimSpace(r.PaymentTerms) == "" {
			return fmt.Errorf("%w: payment terms are required to finalize", ErrInvalidState)
		}
		r.Status = StatusFinalized
		return nil
	})
}

// Send moves finalized → sent. sent is terminal.
func (s *Service) Send(ctx context.Context, id string) (*Response, error) {
	return s.transition(ctx, id, "response.sent", func(r *Response) error {
		switch r.Status {
		case StatusSent:
			return ErrImmutable
		case StatusFinalized:
		default:
			return fmt.Errorf("%w: cannot send a %s response", ErrInvalidState, r.Status)
		}
		r.Status = StatusSent
		return nil
	})
}

// Reopen moves finalized → draft for further edits, clearing the
// derived pricing fields. Sent responses cannot be reopened.
func (s *Service) Reopen(ctx context.Context, id string) (*Response, error) {
	return s.transition(ctx, id, "response.reopened", func(r *Response) error {
		switch r.Status {
		case StatusSent:
			return ErrImmutable
		case StatusFinalized:
		default:
			return fmt.Errorf("%w: cannot reopen a %s response", ErrInvalidState, r.Status)
		}
		r.Status = StatusDraft
		r.clearDerived()
		return nil
	})
}

// Get returns one response by id.
func (s *Service) Get(ctx context.Context, id string) (*Response, error) {
	return s.store.Find(ctx, id)
}

// List returns all responses, newest first.
func (s *Service) List(ctx context.Context) ([]*Response, error) {
	return s.store.List(ctx)
}

// ListByDocument returns responses for one RFP document.
func (s *Service) ListByDocument(ctx context.Context, rfpDocumentID string) ([]*Response, error) {
	return s.store.ListByDocument(ctx, rfpDocumentID)
}

func (s *Service) transition(ctx context.Context, id, event string, apply func(*Response) error) (*Response, error) {
	r, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := r.Version
	if err := apply(r); err != nil {
		return nil, err
	}
	r.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, r, expected); err != nil {
		return nil, err
	}
	s.publish(event, r)
	return r, nil
}

func (s *Service) publish(event string, r *Response) {
	if s.events == nil {
		return
	}
	s.events.Publish(stream.Event{
		Type:       event,
		ResourceID: r.ID,
		Status:     string(r.Status),
		At:         s.now().UTC(),
	})
}

func parseCurrency(raw string) (money.Currency, error) {
	cur, err := money.ParseCurrency(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return cur, nil
}
