// File: internal/domain/message.go
package domain

import "time"

// Message roles. Ordering of messages equals conversation order.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message within a chat session.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	SessionID uint      `json:"-" gorm:"index;not null"`
	Role      string    `json:"role" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
}
