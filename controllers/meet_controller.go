package controllers

import (
	"encoding/json"
	"net/http"

	"pairup_server/services"
)

// MeetController handles HTTP requests for the open "meet someone" flow
type MeetController struct {
	MeetService *services.MeetService
}

// NewMeetController creates a new MeetController instance
func NewMeetController(meetService *services.MeetService) *MeetController {
	return &MeetController{MeetService: meetService}
}

// RequestMeet handles a one-shot meet request.
func (mc *MeetController) RequestMeet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID          string `json:"userId"`
		DurationMinutes *int   `json:"durationMinutes"`
		Mode            string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := mc.MeetService.RequestMeet(r.Context(), body.UserID, body.DurationMinutes, body.Mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetMeetStatus handles lookups of an existing meet link.
func (mc *MeetController) GetMeetStatus(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()
	meetLinkID := queryParams.Get("meetLinkId")
	userID := queryParams.Get("userId")

	if meetLinkID == "" || userID == "" {
		http.Error(w, "meetLinkId and userId are required", http.StatusBadRequest)
		return
	}

	result, err := mc.MeetService.GetMeetStatus(r.Context(), meetLinkID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
