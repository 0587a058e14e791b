package routes

import (
	"vibin_chat/controllers"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(r *mux.Router, controller *controllers.ChatController) {
	chatRouter := r.PathPrefix("/api/chat").Subrouter()

	chatRouter.HandleFunc("/message", controller.CreateMessage).Methods("POST")
	chatRouter.HandleFunc("/conversations/{conversationId}/messages", controller.GetConversationMessages).Methods("GET")
	chatRouter.HandleFunc("/messages", controller.GetMessagesBetween).Methods("GET")
	chatRouter.HandleFunc("/messages/mark-as-read", controller.MarkMessagesAsRead).Methods("POST")
	chatRouter.HandleFunc("/unread", controller.GetUnreadCounts).Methods("GET")
}
