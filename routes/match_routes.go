package routes

import (
	"vibin_chat/controllers"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up the match workflow hook
func RegisterMatchRoutes(r *mux.Router, controller *controllers.MatchController) {
	r.HandleFunc("/api/match", controller.RecordMatch).Methods("POST")
}
