package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-clubs/services"
)

type EquipmentHandler struct {
	equipmentService services.EquipmentService
}

func NewEquipmentHandler(es services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentService: es}
}

func (h *EquipmentHandler) AddEquipment(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EquipmentInput
	if !decodeInput(w, r, &input) {
		return
	}

	item, err := h.equipmentService.AddEquipment(r.Context(), clubID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": item}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	equipmentID, err := getIDFromURL(r, "equipmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	item, err := h.equipmentService.GetEquipment(r.Context(), clubID, equipmentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": item}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	items, err := h.equipmentService.ListEquipment(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": items}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	equipmentID, err := getIDFromURL(r, "equipmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EquipmentInput
	if !decodeInput(w, r, &input) {
		return
	}

	item, err := h.equipmentService.UpdateEquipment(r.Context(), clubID, equipmentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"equipment": item}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EquipmentHandler) RemoveEquipment(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	equipmentID, err := getIDFromURL(r, "equipmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.equipmentService.RemoveEquipment(r.Context(), clubID, equipmentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
