package routes

import (
	"vibin_chat/controllers"

	"github.com/gorilla/mux"
)

func RegisterAdminRoutes(r *mux.Router, controller *controllers.AdminController) {
	r.HandleFunc("/api/admin/cache/clear", controller.ClearCache).Methods("POST")
}
