package routes

import (
	"pairup_server/controllers"
	"pairup_server/services"

	"github.com/gorilla/mux"
)

// RegisterMeetRoutes sets up routes for the open meet flow under /api/meet
func RegisterMeetRoutes(r *mux.Router, meetService *services.MeetService) {
	controller := controllers.NewMeetController(meetService)

	meetRouter := r.PathPrefix("/api/meet").Subrouter()

	meetRouter.HandleFunc("/match", controller.RequestMeet).Methods("POST")
	meetRouter.HandleFunc("/status", controller.GetMeetStatus).Methods("GET")
}
