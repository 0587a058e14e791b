package routes

import (
	"vibin_chat/controllers"

	"github.com/gorilla/mux"
)

// RegisterMediaRoutes sets up presigned URL routes for chat attachments
func RegisterMediaRoutes(r *mux.Router, controller *controllers.MediaController) {
	mediaRouter := r.PathPrefix("/api/chat/media").Subrouter()

	mediaRouter.HandleFunc("/upload-url", controller.GenerateUploadURL).Methods("POST")
	mediaRouter.HandleFunc("/read-url", controller.GenerateReadURL).Methods("POST")
}
