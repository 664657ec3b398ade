package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rfpdesk.io/internal/obs"
	"rfpdesk.io/internal/pricing"
	"rfpdesk.io/internal/response"
)

type createResponseRequest struct {
	RFPDocumentID        string                    `json:"rfp_document_id"`
	Title                string                    `json:"title"`
	Content              string                    `json:"content"`
	Currency             string                    `json:"currency"`
	DeliveryModel        string                    `json:"delivery_model"`
	DurationMonths       int                       `json:"project_duration_months"`
	Consultants          int                       `json:"number_of_consultants"`
	RatePerMonth         decimal.Decimal           `json:"price_per_consultant_per_month"`
	TaxRate              decimal.Decimal           `json:"tax_rate"`
	ConsultantTypes      []pricing.ConsultantType  `json:"consultant_types"`
	AdditionalCosts      []pricing.AdditionalCost  `json:"additional_costs"`
	PaymentTerms         string                    `json:"payment_terms"`
	ProposalValidityDays int                       `json:"proposal_validity_days"`
}

func (a *API) handleCreateResponse(w http.ResponseWriter, r *http.Request) {
	var req createResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := a.responses.Create(r.Context(), response.CreateInput{
		RFPDocumentID:        req.RFPDocumentID,
		Title:                req.Title,
		Content:              req.Content,
		Currency:             req.Currency,
		DeliveryModel:        req.DeliveryModel,
		DurationMonths:       req.DurationMonths,
		Consultants:          req.Consultants,
		RatePerMonth:         req.RatePerMonth,
		TaxRate:              req.TaxRate,
		ConsultantTypes:      req.ConsultantTypes,
		AdditionalCosts:      req.AdditionalCosts,
		PaymentTerms:         req.PaymentTerms,
		ProposalValidityDays: req.ProposalValidityDays,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/responses/"+resp.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleListResponses(w http.ResponseWriter, r *http.Request) {
	items, err := a.responses.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	resp, err := a.responses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateResponseRequest struct {
	Title                *string                   `json:"title"`
	Content              *string                   `json:"content"`
	DeliveryModel        *string                   `json:"delivery_model"`
	DurationMonths       *int                      `json:"project_duration_months"`
	Consultants          *int                      `json:"number_of_consultants"`
	RatePerMonth         *decimal.Decimal          `json:"price_per_consultant_per_month"`
	TaxRate              *decimal.Decimal          `json:"tax_rate"`
	ConsultantTypes      *[]pricing.ConsultantType `json:"consultant_types"`
	AdditionalCosts      *[]pricing.AdditionalCost `json:"additional_costs"`
	PaymentTerms         *string                   `json:"payment_terms"`
	ProposalValidityDays *int                      `json:"proposal_validity_days"`
}

func (a *API) handleUpdateResponse(w http.ResponseWriter, r *http.Request) {
	var req updateResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := a.responses.Update(r.Context(), chi.URLParam(r, "id"), response.UpdateInput{
		Title:                req.Title,
		Content:              req.Content,
		DeliveryModel:        req.DeliveryModel,
		DurationMonths:       req.DurationMonths,
		Consultants:          req.Consultants,
		RatePerMonth:         req.RatePerMonth,
		TaxRate:              req.TaxRate,
		ConsultantTypes:      req.ConsultantTypes,
		AdditionalCosts:      req.AdditionalCosts,
		PaymentTerms:         req.PaymentTerms,
		ProposalValidityDays: req.ProposalValidityDays,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handlePriceResponse(w http.ResponseWriter, r *http.Request) {
	resp, err := a.responses.Price(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		obs.ObservePricing("error")
		writeServiceError(w, r, err)
		return
	}
	obs.ObservePricing("ok")
	obs.ObserveTransition(string(resp.Status))
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleFinalizeResponse(w http.ResponseWriter, r *http.Request) {
	a.transitionResponse(w, r, a.responses.Finalize)
}

func (a *API) handleSendResponse(w http.ResponseWriter, r *http.Request) {
	a.transitionResponse(w, r, a.responses.Send)
}

func (a *API) handleReopenResponse(w http.ResponseWriter, r *http.Request) {
	a.transitionResponse(w, r, a.responses.Reopen)
}

func (a *API) transitionResponse(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id string) (*response.Response, error)) {
	resp, err := op(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	obs.ObserveTransition(string(resp.Status))
	writeJSON(w, http.StatusOK, resp)
}
