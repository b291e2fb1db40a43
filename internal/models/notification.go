package models

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationAssigned      NotificationType = "planning_assigned"
	NotificationStatusChanged NotificationType = "planning_status_changed"
)

// Notification is a best-effort message to a user. Delivery failures are
// logged and dropped; nothing transactional depends on this table.
type Notification struct {
	Base
	UserID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type     NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Priority string           `gorm:"type:varchar(20);default:'normal'" json:"priority"`
	Title    string           `gorm:"type:varchar(255);not null" json:"title"`
	Message  string           `gorm:"type:text" json:"message"`
	Payload  string           `gorm:"type:text" json:"payload"`
	Read     bool             `gorm:"not null;default:false" json:"read"`
}
