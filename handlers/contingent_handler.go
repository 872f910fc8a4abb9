package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/services"
)

const maxLogoUploadSize = 5 << 20 // 5MB

type ContingentHandler struct {
	contingentService services.ContingentService
}

func NewContingentHandler(cs services.ContingentService) *ContingentHandler {
	return &ContingentHandler{contingentService: cs}
}

type contingentInput struct {
	Name     string  `json:"name"`
	District *string `json:"district"`
	Province *string `json:"province"`
}

// CreateHandler handles POST /contingents.
func (h *ContingentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input contingentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contingent := &models.Contingent{
		Name:     input.Name,
		District: input.District,
		Province: input.Province,
	}
	if err := h.contingentService.Create(r.Context(), contingent); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"contingent": contingent}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /contingents/{contingentID}.
func (h *ContingentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "contingentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contingent, err := h.contingentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"contingent": contingent}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /contingents.
func (h *ContingentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	contingents, err := h.contingentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"contingents": contingents}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /contingents/{contingentID}.
func (h *ContingentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "contingentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input contingentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contingent := &models.Contingent{
		ID:       id,
		Name:     input.Name,
		District: input.District,
		Province: input.Province,
	}
	if err := h.contingentService.Update(r.Context(), contingent); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"contingent": contingent}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /contingents/{contingentID}.
func (h *ContingentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "contingentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.contingentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogoHandler handles POST /contingents/{contingentID}/logo with a
// multipart "logo" file field.
func (h *ContingentHandler) UploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "contingentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoUploadSize)
	if err := r.ParseMultipartForm(maxLogoUploadSize); err != nil {
		badRequestResponse(w, r, errors.New("could not parse multipart form, file may be too large"))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, errors.New("logo file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	contingent, err := h.contingentService.UploadLogo(r.Context(), id, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"contingent": contingent}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
