package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-clubs/services"
)

type PairHandler struct {
	pairService services.PairService
}

func NewPairHandler(ps services.PairService) *PairHandler {
	return &PairHandler{pairService: ps}
}

func (h *PairHandler) CreatePair(w http.ResponseWriter, r *http.Request) {
	var input services.PairInput
	if !decodeInput(w, r, &input) {
		return
	}

	pair, err := h.pairService.CreatePair(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"pair": pair}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairHandler) GetPair(w http.ResponseWriter, r *http.Request) {
	pairID, err := getIDFromURL(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pair, err := h.pairService.GetPair(r.Context(), pairID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"pair": pair}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairHandler) ListPairs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := getPageFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pairs, err := h.pairService.ListPairs(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"pairs": pairs}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairHandler) UpdatePair(w http.ResponseWriter, r *http.Request) {
	pairID, err := getIDFromURL(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PairInput
	if !decodeInput(w, r, &input) {
		return
	}

	pair, err := h.pairService.UpdatePair(r.Context(), pairID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"pair": pair}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairHandler) DeletePair(w http.ResponseWriter, r *http.Request) {
	pairID, err := getIDFromURL(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.pairService.DeletePair(r.Context(), pairID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PairHandler) GetDoublesMatches(w http.ResponseWriter, r *http.Request) {
	pairID, err := getIDFromURL(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.pairService.GetDoublesMatches(r.Context(), pairID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"matches": matches}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
