package routes

import (
	"fmt"
	"net/http"

	"vibin_chat/controllers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the routes that do not belong to a feature
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Vibin chat")
	}).Methods("GET")
}
