package routes

import (
	"pairup_server/controllers"
	"pairup_server/services"

	"github.com/gorilla/mux"
)

// RegisterActivityRoutes sets up routes for activity pairing under /api/activities
func RegisterActivityRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	activityRouter := r.PathPrefix("/api/activities").Subrouter()

	activityRouter.HandleFunc("/match", controller.SubmitSearch).Methods("POST")
	activityRouter.HandleFunc("/status", controller.GetStatus).Methods("GET")
}
