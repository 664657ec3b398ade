package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rfpdesk.io/internal/document"
)

type createDocumentRequest struct {
	Title      string `json:"title"`
	ClientName string `json:"client_name"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	FileType   string `json:"file_type"`
}

func (a *API) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := a.documents.CreateRFPDocument(r.Context(), document.CreateRFPInput{
		Title:      req.Title,
		ClientName: req.ClientName,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		FileType:   req.FileType,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (a *API) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := a.documents.ListRFPDocuments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": docs})
}

func (a *API) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := a.documents.GetRFPDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (a *API) handleMarkProcessing(w http.ResponseWriter, r *http.Request) {
	doc, err := a.documents.MarkProcessing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type markProcessedRequest struct {
	Content string `json:"content"`
}

func (a *API) handleMarkProcessed(w http.ResponseWriter, r *http.Request) {
	var req markProcessedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := a.documents.MarkProcessed(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type markFailedRequest struct {
	Reason string `json:"reason"`
}

func (a *API) handleMarkFailed(w http.ResponseWriter, r *http.Request) {
	var req markFailedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := a.documents.MarkFailed(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (a *API) handleListDocumentResponses(w http.ResponseWriter, r *http.Request) {
	items, err := a.responses.ListByDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type createCompanyDocumentRequest struct {
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

func (a *API) handleCreateCompanyDocument(w http.ResponseWriter, r *http.Request) {
	var req createCompanyDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := a.documents.CreateCompanyDocument(r.Context(), document.CreateCompanyInput{
		Title:    req.Title,
		FileName: req.FileName,
		FileSize: req.FileSize,
		FileType: req.FileType,
		Category: req.Category,
		Content:  req.Content,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/company-documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (a *API) handleListCompanyDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := a.documents.ListCompanyDocuments(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": docs})
}

func (a *API) handleGetCompanyDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := a.documents.GetCompanyDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
