package models

// ✅ Duplex channel events
const (
	EventAuthenticate  = "authenticate"  // client -> server {userId}
	EventAuthenticated = "authenticated" // server -> client ack
	EventError         = "error"         // server -> client {error}
	EventNewMessage    = "new_message"   // server -> client MessageView
)

// ✅ Match statuses
const (
	MatchStatusActive = "active"
)
