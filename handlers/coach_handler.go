package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tennis-clubs/models"
	"github.com/Dosada05/tennis-clubs/services"
)

type affiliationChangeFunc func(ctx context.Context, id int, input services.AffiliationChangeInput) (*models.AffiliationSummary, error)

type CoachHandler struct {
	coachService services.CoachService
}

func NewCoachHandler(cs services.CoachService) *CoachHandler {
	return &CoachHandler{coachService: cs}
}

func (h *CoachHandler) CreateCoach(w http.ResponseWriter, r *http.Request) {
	var input services.CoachInput
	if !decodeInput(w, r, &input) {
		return
	}

	coach, err := h.coachService.CreateCoach(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"coach": coach}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) GetCoach(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	coach, err := h.coachService.GetCoach(r.Context(), coachID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"coach": coach}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	filter, err := personFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	coaches, err := h.coachService.ListCoaches(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"coaches": coaches}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) UpdateCoach(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CoachInput
	if !decodeInput(w, r, &input) {
		return
	}

	coach, err := h.coachService.UpdateCoach(r.Context(), coachID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"coach": coach}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) DeleteCoach(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.coachService.DeleteCoach(r.Context(), coachID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CoachHandler) TransferCoach(w http.ResponseWriter, r *http.Request) {
	h.changeAffiliation(w, r, h.coachService.TransferCoach)
}

func (h *CoachHandler) TerminateCoach(w http.ResponseWriter, r *http.Request) {
	h.changeAffiliation(w, r, h.coachService.TerminateCoach)
}

func (h *CoachHandler) GetAffiliations(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.coachService.GetAffiliations(r.Context(), coachID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"affiliations": summary}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CoachHandler) changeAffiliation(w http.ResponseWriter, r *http.Request, change affiliationChangeFunc) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AffiliationChangeInput
	if !decodeInput(w, r, &input) {
		return
	}

	summary, err := change(r.Context(), coachID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"affiliations": summary}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
