package handlers

import (
	"net/http"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/services"
)

type EntryHandler struct {
	entryService services.EntryService
}

func NewEntryHandler(es services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: es}
}

// CreateHandler handles POST /entries.
func (h *EntryHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Format     models.CompetitionFormat `json:"format"`
		Name       string                   `json:"name"`
		Class      *string                  `json:"class"`
		Discipline *string                  `json:"discipline"`
		Gender     string                   `json:"gender"`
		CategoryID int                      `json:"category_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry := &models.Entry{
		Format:     input.Format,
		Name:       input.Name,
		Class:      input.Class,
		Discipline: input.Discipline,
		Gender:     input.Gender,
		CategoryID: input.CategoryID,
	}
	if err := h.entryService.Create(r.Context(), entry); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /entries/{entryID}.
func (h *EntryHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.entryService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /entries?format=combat|performance.
func (h *EntryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var format *models.CompetitionFormat
	if raw := r.URL.Query().Get("format"); raw != "" {
		f := models.CompetitionFormat(raw)
		format = &f
	}

	entries, err := h.entryService.List(r.Context(), format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /entries/{entryID}.
func (h *EntryHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.entryService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterHandler handles POST /entries/{entryID}/competitors.
func (h *EntryHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	entryID, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		CompetitorID int `json:"competitor_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.entryService.RegisterCompetitor(r.Context(), entryID, input.CompetitorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registered": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UnregisterHandler handles DELETE /entries/{entryID}/competitors/{competitorID}.
func (h *EntryHandler) UnregisterHandler(w http.ResponseWriter, r *http.Request) {
	entryID, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.entryService.UnregisterCompetitor(r.Context(), entryID, competitorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RosterHandler handles GET /entries/{entryID}/competitors.
func (h *EntryHandler) RosterHandler(w http.ResponseWriter, r *http.Request) {
	entryID, err := getIDFromURL(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roster, err := h.entryService.Roster(r.Context(), entryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitors": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
