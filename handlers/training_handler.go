package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-clubs/services"
)

type TrainingHandler struct {
	trainingService services.TrainingService
}

func NewTrainingHandler(ts services.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: ts}
}

func (h *TrainingHandler) CreateTraining(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.TrainingInput
	if !decodeInput(w, r, &input) {
		return
	}

	training, err := h.trainingService.CreateTraining(r.Context(), coachID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"training": training}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TrainingHandler) GetTraining(w http.ResponseWriter, r *http.Request) {
	coachID, trainingID, ok := getNestedIDsFromURL(w, r, "coachID", "trainingID")
	if !ok {
		return
	}

	training, err := h.trainingService.GetTraining(r.Context(), coachID, trainingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"training": training}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TrainingHandler) ListTrainings(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "coachID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	trainings, err := h.trainingService.ListTrainings(r.Context(), coachID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"trainings": trainings}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TrainingHandler) UpdateTraining(w http.ResponseWriter, r *http.Request) {
	coachID, trainingID, ok := getNestedIDsFromURL(w, r, "coachID", "trainingID")
	if !ok {
		return
	}

	var input services.TrainingInput
	if !decodeInput(w, r, &input) {
		return
	}

	training, err := h.trainingService.UpdateTraining(r.Context(), coachID, trainingID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"training": training}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TrainingHandler) DeleteTraining(w http.ResponseWriter, r *http.Request) {
	coachID, trainingID, ok := getNestedIDsFromURL(w, r, "coachID", "trainingID")
	if !ok {
		return
	}

	if err := h.trainingService.DeleteTraining(r.Context(), coachID, trainingID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
