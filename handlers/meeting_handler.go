package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-clubs/services"
)

type MeetingHandler struct {
	meetingService services.MeetingService
}

func NewMeetingHandler(ms services.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: ms}
}

func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MeetingInput
	if !decodeInput(w, r, &input) {
		return
	}

	meeting, err := h.meetingService.CreateMeeting(r.Context(), clubID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"meeting": meeting}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	meetingID, err := getIDFromURL(r, "meetingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	meeting, err := h.meetingService.GetMeeting(r.Context(), clubID, meetingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"meeting": meeting}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MeetingHandler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	meetings, err := h.meetingService.ListMeetings(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"meetings": meetings}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MeetingHandler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	meetingID, err := getIDFromURL(r, "meetingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MeetingInput
	if !decodeInput(w, r, &input) {
		return
	}

	meeting, err := h.meetingService.UpdateMeeting(r.Context(), clubID, meetingID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"meeting": meeting}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MeetingHandler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	meetingID, err := getIDFromURL(r, "meetingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.meetingService.DeleteMeeting(r.Context(), clubID, meetingID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
