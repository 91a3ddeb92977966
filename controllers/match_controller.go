package controllers

import (
	"encoding/json"
	"net/http"

	"pairup_server/services"
)

// MatchController handles HTTP requests for activity search and status polling
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// SubmitSearch handles a search submission: pair immediately if someone is
// waiting, otherwise leave the request searching.
func (mc *MatchController) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID        string `json:"userId"`
		ActivityClass string `json:"activityClass"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := mc.MatchService.SubmitSearch(r.Context(), body.UserID, body.ActivityClass)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetStatus handles status polls for a search request. Accepts matchId as a
// legacy alias for requestId.
func (mc *MatchController) GetStatus(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()
	requestID := queryParams.Get("requestId")
	if requestID == "" {
		requestID = queryParams.Get("matchId")
	}
	userID := queryParams.Get("userId")

	if requestID == "" || userID == "" {
		http.Error(w, "requestId and userId are required", http.StatusBadRequest)
		return
	}

	result, err := mc.MatchService.GetStatus(r.Context(), requestID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
