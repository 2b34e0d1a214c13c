// File: internal/domain/chat.go
package domain

import "time"

// ChatSession represents a single conversation thread owned by a user key.
// The pair (UserKey, ChatID) identifies a session; ChatID is globally
// unique at creation time and never changes afterwards.
type ChatSession struct {
	ID        uint             `gorm:"primarykey" json:"-"`
	ChatID    string           `json:"chatId" gorm:"uniqueIndex;not null"`
	UserKey   string           `json:"userKey" gorm:"index;not null"`
	Title     string           `json:"title,omitempty"`
	Archived  bool             `json:"archived"`
	Messages  []Message        `json:"messages" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	Files     []FileAttachment `json:"files" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `json:"-"`
	UpdatedAt time.Time        `json:"-"`
}

// AppendMessage adds a message to the end of the conversation.
// Messages are append-only; existing entries are never edited or reordered.
func (s *ChatSession) AppendMessage(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// AppendFile records an uploaded file on the session.
func (s *ChatSession) AppendFile(f FileAttachment) {
	s.Files = append(s.Files, f)
}
