package domain

import "time"

// NotificationType is the delivery channel recorded with the message.
type NotificationType string

const (
	NotificationEmail    NotificationType = "email"
	NotificationWhatsapp NotificationType = "whatsapp"
	NotificationSystem   NotificationType = "system"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// WSMessage is the websocket frame pushed to connected clients.
type WSMessage struct {
	Event        string        `json:"event"`
	Notification *Notification `json:"notification"`
}
