package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rfpdesk.io/internal/content"
)

type createTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Category    string `json:"category"`
}

func (a *API) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := a.content.CreateTemplate(r.Context(), req.Name, req.Description, req.Content, req.Category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/templates/"+t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (a *API) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	items, err := a.content.ListTemplates(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := a.content.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) handleGetBranding(w http.ResponseWriter, r *http.Request) {
	b, err := a.content.GetBranding(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type updateBrandingRequest struct {
	LogoURL          string `json:"logo_url"`
	CompanyName      string `json:"company_name"`
	PrimaryColor     string `json:"primary_color"`
	SecondaryColor   string `json:"secondary_color"`
	FontFamily       string `json:"font_family"`
	PresentationURL  string `json:"presentation_url"`
	PresentationName string `json:"presentation_name"`
	PresentationSize int64  `json:"presentation_size"`
}

func (a *API) handleUpdateBranding(w http.ResponseWriter, r *http.Request) {
	var req updateBrandingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	b, err := a.content.UpdateBranding(r.Context(), content.BrandingInput{
		LogoURL:          req.LogoURL,
		CompanyName:      req.CompanyName,
		PrimaryColor:     req.PrimaryColor,
		SecondaryColor:   req.SecondaryColor,
		FontFamily:       req.FontFamily,
		PresentationURL:  req.PresentationURL,
		PresentationName: req.PresentationName,
		PresentationSize: req.PresentationSize,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
