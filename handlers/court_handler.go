package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-clubs/services"
)

type CourtHandler struct {
	courtService services.CourtService
}

func NewCourtHandler(cs services.CourtService) *CourtHandler {
	return &CourtHandler{courtService: cs}
}

// clubAndCourtIDs reads both path ids, answering 400 itself on failure.
func clubAndCourtIDs(w http.ResponseWriter, r *http.Request) (clubID, courtID int, ok bool) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	courtID, err = getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return clubID, courtID, true
}

func (h *CourtHandler) CreateCourt(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CourtInput
	if !decodeInput(w, r, &input) {
		return
	}

	court, err := h.courtService.CreateCourt(r.Context(), clubID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"court": court}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourtHandler) GetCourt(w http.ResponseWriter, r *http.Request) {
	clubID, courtID, ok := clubAndCourtIDs(w, r)
	if !ok {
		return
	}

	court, err := h.courtService.GetCourt(r.Context(), clubID, courtID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"court": court}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourtHandler) ListCourts(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	courts, err := h.courtService.ListCourts(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"courts": courts}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourtHandler) UpdateCourt(w http.ResponseWriter, r *http.Request) {
	clubID, courtID, ok := clubAndCourtIDs(w, r)
	if !ok {
		return
	}

	var input services.CourtInput
	if !decodeInput(w, r, &input) {
		return
	}

	court, err := h.courtService.UpdateCourt(r.Context(), clubID, courtID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"court": court}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourtHandler) DeleteCourt(w http.ResponseWriter, r *http.Request) {
	clubID, courtID, ok := clubAndCourtIDs(w, r)
	if !ok {
		return
	}

	if err := h.courtService.DeleteCourt(r.Context(), clubID, courtID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
