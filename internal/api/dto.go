package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/chat"
	"github.com/starford/notechat/internal/models"
	"github.com/starford/notechat/internal/noteservice"
)

// maxMessageLength caps a single chat message, in runes.
const maxMessageLength = 4000

// ChatRequest is the request body for POST /chat.
type ChatRequest struct {
	Message string `json:"message" example:"Create a note titled Groceries" validate:"required"`
}

// Validate implements validation.Validatable.
func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required, validation.RuneLength(1, maxMessageLength)),
	)
}

// ChatReply is the chat turn response (aliased from the chat layer).
type ChatReply = chat.Reply

// ChatHistoryResponse wraps the stored conversation.
type ChatHistoryResponse struct {
	Messages []models.ChatMessage `json:"messages" validate:"required"`
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string `json:"title" example:"Groceries" validate:"required"`
	Content string `json:"content" example:"Milk, eggs"`
}

// Validate implements validation.Validatable.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, models.MaxTitleLength)),
	)
}

// UpdateNoteRequest is the request body for a partial note update.
type UpdateNoteRequest struct {
	Title     *string `json:"title,omitempty" example:"Groceries"`
	Content   *string `json:"content,omitempty" example:"Milk, eggs, bread"`
	Completed *bool   `json:"completed,omitempty" example:"true"`
}

// Validate implements validation.Validatable.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, models.MaxTitleLength)),
		validation.Field(&r.Content, validation.When(r.Title == nil && r.Completed == nil, validation.NotNil.Error("nothing to update"))),
	)
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteDetail `json:"notes" validate:"required"`
	Total int          `json:"total" example:"42" validate:"required"`
}

func statusFilter(s string) error {
	return validation.Validate(s, validation.In(action.StatusCompleted, action.StatusUncompleted))
}
