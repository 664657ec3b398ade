// Package httpapi is the HTTP surface of the service: authentication,
// document intake, response lifecycle, templates and branding, plus
// the operational endpoints.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rfpdesk.io/internal/account"
	"rfpdesk.io/internal/content"
	"rfpdesk.io/internal/document"
	"rfpdesk.io/internal/obs"
	"rfpdesk.io/internal/pricing"
	"rfpdesk.io/internal/response"
	"rfpdesk.io/internal/stream"
)

const maxBodyBytes = 1 << 20

// ReadyProbe checks downstream readiness (database ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries the services the API fronts.
type Deps struct {
	Accounts  *account.Service
	Documents *document.Service
	Responses *response.Service
	Content   *content.Service
	Stream    *stream.Hub
	Ready     ReadyProbe
	Version   string
}

// API is the HTTP layer.
type API struct {
	accounts  *account.Service
	documents *document.Service
	responses *response.Service
	content   *content.Service
	stream    *stream.Hub
	ready     ReadyProbe
	version   string

	rateBurst  int
	ratePerSec int
}

func New(deps Deps) *API {
	a := &API{
		accounts:   deps.Accounts,
		documents:  deps.Documents,
		responses:  deps.Responses,
		content:    deps.Content,
		stream:     deps.Stream,
		ready:      deps.Ready,
		version:    deps.Version,
		rateBurst:  40,
		ratePerSec: 20,
	}
	return a
}

// Handler assembles the middleware chain and routes.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(LoggingJSON)
	r.Use(SecurityHeaders)
	r.Use(CORS)
	r.Use(MaxBodyBytes(maxBodyBytes))
	r.Use(RateLimit(a.rateBurst, a.ratePerSec))
	r.Use(a.withAuth)

	r.Get("/healthz", a.handleHealthz)
	r.Get("/readyz", a.handleReady)
	r.Handle("/metrics", obs.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/info", a.handleInfo)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", a.handleRegister)
			r.Post("/verify", a.handleVerifyEmail)
			r.Post("/login", a.handleLogin)
			r.Post("/logout", a.handleLogout)
			r.Post("/password-reset/request", a.handlePasswordResetRequest)
			r.Post("/password-reset/confirm", a.handlePasswordResetConfirm)
			r.Get("/me", a.handleMe)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", a.handleCreateDocument)
			r.Get("/", a.handleListDocuments)
			r.Get("/{id}", a.handleGetDocument)
			r.Post("/{id}/process", a.handleMarkProcessing)
			r.Post("/{id}/processed", a.handleMarkProcessed)
			r.Post("/{id}/failed", a.handleMarkFailed)
			r.Get("/{id}/responses", a.handleListDocumentResponses)
		})

		r.Route("/company-documents", func(r chi.Router) {
			r.Post("/", a.handleCreateCompanyDocument)
			r.Get("/", a.handleListCompanyDocuments)
			r.Get("/{id}", a.handleGetCompanyDocument)
		})

		r.Route("/responses", func(r chi.Router) {
			r.Post("/", a.handleCreateResponse)
			r.Get("/", a.handleListResponses)
			r.Get("/{id}", a.handleGetResponse)
			r.Patch("/{id}", a.handleUpdateResponse)
			r.Post("/{id}/price", a.handlePriceResponse)
			r.Post("/{id}/finalize", a.handleFinalizeResponse)
			r.Post("/{id}/send", a.handleSendResponse)
			r.Post("/{id}/reopen", a.handleReopenResponse)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", a.handleCreateTemplate)
			r.Get("/", a.handleListTemplates)
			r.Get("/{id}", a.handleGetTemplate)
		})

		r.Get("/branding", a.handleGetBranding)
		r.Put("/branding", a.handleUpdateBranding)

		r.Get("/events", a.handleEvents)
	})

	return obs.Instrument(r)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "rfpdesk-api",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "rfpdesk-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// writeServiceError maps domain sentinel errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFromError(err)
	if code == http.StatusInternalServerError {
		writeError(w, r, code, "internal error")
		return
	}
	writeError(w, r, code, err.Error())
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, account.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, account.ErrTokenExpired),
		errors.Is(err, account.ErrTokenInvalid):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrConflict),
		errors.Is(err, response.ErrConflict),
		errors.Is(err, response.ErrImmutable):
		return http.StatusConflict
	case errors.Is(err, document.ErrInvalidState),
		errors.Is(err, response.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, account.ErrValidation),
		errors.Is(err, document.ErrValidation),
		errors.Is(err, response.ErrValidation),
		errors.Is(err, content.ErrValidation),
		errors.Is(err, pricing.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, document.ErrNotFound),
		errors.Is(err, response.ErrNotFound),
		errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
