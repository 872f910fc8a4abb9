package handlers

import (
	"net/http"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/services"
)

type OfficialHandler struct {
	officialService services.OfficialService
}

func NewOfficialHandler(os services.OfficialService) *OfficialHandler {
	return &OfficialHandler{officialService: os}
}

// CreateHandler handles POST /officials.
func (h *OfficialHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	official := &models.Official{Name: input.Name}
	if err := h.officialService.Create(r.Context(), official); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"official": official}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /officials/{officialID}.
func (h *OfficialHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "officialID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	official, err := h.officialService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"official": official}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /officials.
func (h *OfficialHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	officials, err := h.officialService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"officials": officials}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /officials/{officialID}.
func (h *OfficialHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "officialID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	official := &models.Official{ID: id, Name: input.Name}
	if err := h.officialService.Update(r.Context(), official); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"official": official}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /officials/{officialID}.
func (h *OfficialHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "officialID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.officialService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
