package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notechat/internal/chat"
	"github.com/starford/notechat/internal/noteservice"
	"github.com/starford/notechat/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted behind
// AuthMiddleware. broker, if non-nil, serves GET /events for the
// authenticated owner.
func NewRouter(notes *noteservice.Service, chatSvc *chat.Service, auth Auth, broker *sse.Broker) chi.Router {
	h := NewHandler(notes, chatSvc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(auth))

	// Chat.
	r.Post("/chat", h.Chat)
	r.Get("/chat", h.ChatHistory)

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Post("/notes/{id}/restore", h.RestoreNote)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
			broker.Stream(w, r, OwnerFrom(r.Context()))
		})
	}

	return r
}
