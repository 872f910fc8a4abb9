package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/silat-bracket/models"
	"github.com/Dosada05/silat-bracket/repositories"
	"github.com/Dosada05/silat-bracket/services"
)

type CompetitorHandler struct {
	competitorService services.CompetitorService
}

func NewCompetitorHandler(cs services.CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{competitorService: cs}
}

type competitorInput struct {
	Name         string        `json:"name"`
	Gender       models.Gender `json:"gender"`
	ContingentID int           `json:"contingent_id"`
	CategoryID   int           `json:"category_id"`
}

// CreateHandler handles POST /competitors.
func (h *CompetitorHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input competitorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor := &models.Competitor{
		Name:         input.Name,
		Gender:       input.Gender,
		ContingentID: input.ContingentID,
		CategoryID:   input.CategoryID,
	}
	if err := h.competitorService.Create(r.Context(), competitor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /competitors/{competitorID}.
func (h *CompetitorHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor, err := h.competitorService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /competitors with contingent/category/gender filters.
func (h *CompetitorHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.CompetitorFilter
	query := r.URL.Query()

	if raw := query.Get("contingent_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errors.New("invalid contingent_id query parameter"))
			return
		}
		filter.ContingentID = &id
	}
	if raw := query.Get("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errors.New("invalid category_id query parameter"))
			return
		}
		filter.CategoryID = &id
	}
	if raw := query.Get("gender"); raw != "" {
		gender := models.Gender(raw)
		if !gender.Valid() {
			badRequestResponse(w, r, errors.New("invalid gender query parameter"))
			return
		}
		filter.Gender = &gender
	}

	competitors, err := h.competitorService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitors": competitors}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /competitors/{competitorID}.
func (h *CompetitorHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input competitorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor := &models.Competitor{
		ID:           id,
		Name:         input.Name,
		Gender:       input.Gender,
		ContingentID: input.ContingentID,
		CategoryID:   input.CategoryID,
	}
	if err := h.competitorService.Update(r.Context(), competitor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /competitors/{competitorID}.
func (h *CompetitorHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitorService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
