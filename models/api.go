package models

import "time"

// SendMessageRequest is the body of POST /api/chat/message
type SendMessageRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Content    string `json:"content"`
}

// SendMessageResponse is returned once a message is durable
type SendMessageResponse struct {
	Sent           bool   `json:"sent"`
	ConversationID string `json:"conversationId"`
	ID             string `json:"id"`
}

// MessageView is the shape of history entries and of the new_message push
type MessageView struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthenticatePayload is sent by a client right after connecting
type AuthenticatePayload struct {
	UserID string `json:"userId"`
}

// MarkAsReadRequest resets a user's unread counter for a conversation
type MarkAsReadRequest struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

// RecordMatchRequest is posted by the request-acceptance workflow
type RecordMatchRequest struct {
	User1Handle string `json:"user1Handle"`
	User2Handle string `json:"user2Handle"`
}

// MediaUploadRequest asks for a presigned upload URL for a chat attachment
type MediaUploadRequest struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	FileName       string `json:"fileName"`
	FileType       string `json:"fileType"`
}

// MediaReadRequest asks for a presigned read URL for a stored attachment
type MediaReadRequest struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Key            string `json:"key"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
