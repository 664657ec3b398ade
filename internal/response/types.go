package response

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rfpdesk.io/internal/money"
	"rfpdesk.io/internal/pricing"
)

// Status is the response lifecycle state. sent is terminal.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPriced    Status = "priced"
	StatusFinalized Status = "finalized"
	StatusSent      Status = "sent"
)

// ParseStatus rejects unknown status values at the storage boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPriced, StatusFinalized, StatusSent:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrValidation, s)
	}
}

// DeliveryModel describes where the consultants work from.
type DeliveryModel string

const (
	DeliveryOnsite   DeliveryModel = "onsite"
	DeliveryOffshore DeliveryModel = "offshore"
	DeliveryHybrid   DeliveryModel = "hybrid"
)

// ParseDeliveryModel validates a delivery model value. Empty is
// allowed; a draft may not have chosen one yet.
func ParseDeliveryModel(s string) (DeliveryModel, error) {
	switch DeliveryModel(s) {
	case DeliveryOnsite, DeliveryOffshore, DeliveryHybrid, "":
		return DeliveryModel(s), nil
	default:
		return "", fmt.Errorf("%w: delivery model %q", ErrValidation, s)
	}
}

// Response is a priced answer to an RFP document. The three derived
// cost fields are never settable by callers; they are computed by the
// pricing engine during the draft→priced transition and cleared again
// on reopen.
type Response struct {
	ID            string `json:"id"`
	RFPDocumentID string `json:"rfp_document_id"`
	Title         string `json:"title"`
	Content       string `json:"content,omitempty"`
	Status        Status `json:"status"`

	DurationMonths int             `json:"project_duration_months"`
	Consultants    int             `json:"number_of_consultants"`
	RatePerMonth   decimal.Decimal `json:"price_per_consultant_per_month"`
	TaxRate        decimal.Decimal `json:"tax_rate"`

	TotalProjectCost decimal.NullDecimal `json:"total_project_cost"`
	TaxAmount        decimal.NullDecimal `json:"tax_amount"`
	FinalTotalCost   decimal.NullDecimal `json:"final_total_cost"`

	DeliveryModel   DeliveryModel             `json:"delivery_model,omitempty"`
	Currency        money.Currency            `json:"currency"`
	ConsultantTypes []pricing.ConsultantType  `json:"consultant_types,omitempty"`
	AdditionalCosts []pricing.AdditionalCost  `json:"additional_costs,omitempty"`

	PaymentTerms         string `json:"payment_terms,omitempty"`
	ProposalValidityDays int    `json:"proposal_validity_days"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Priced reports whether all derived fields are present.
func (r *Response) Priced() bool {
	return r.TotalProjectCost.Valid && r.TaxAmount.Valid && r.FinalTotalCost.Valid
}

func (r *Response) clearDerived() {
	r.TotalProjectCost = decimal.NullDecimal{}
	r.TaxAmount = decimal.NullDecimal{}
	r.FinalTotalCost = decimal.NullDecimal{}
}

var (
	ErrNotFound     = errors.New("response: not found")
	ErrValidation   = errors.New("response: invalid input")
	ErrInvalidState = errors.New("response: invalid state transition")
	ErrConflict     = errors.New("response: concurrent modification")
	ErrImmutable    = errors.New("response: sent responses are immutable")
)
