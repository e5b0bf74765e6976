// Package models defines the domain types for notechat.
package models

import "time"

// MaxTitleLength is the longest title, in runes, a note may carry.
const MaxTitleLength = 50

// Note is a user-owned title+content record with completion and soft-delete flags.
type Note struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"-"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Completed    bool      `json:"completed"`
	IsDeleted    bool      `json:"isDeleted"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one stored turn of the conversation.
type ChatMessage struct {
	ID      string `json:"id"`
	OwnerID string `json:"-"`
	Role    string `json:"role"`
	Content string `json:"content"`
	// Pending holds the JSON of an unresolved disambiguation raised by this
	// assistant message. Empty for every other message.
	Pending   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Usage is the per-owner, per-day AI usage counter.
type Usage struct {
	OwnerID      string `json:"ownerId"`
	Day          string `json:"day"` // YYYY-MM-DD, UTC
	MessageCount int    `json:"messageCount"`
	TokenCount   int    `json:"tokenCount"`
}
