package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notechat/internal/chat"
	"github.com/starford/notechat/internal/noteservice"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	notes *noteservice.Service
	chat  *chat.Service
}

// NewHandler creates a new Handler.
func NewHandler(notes *noteservice.Service, chatSvc *chat.Service) *Handler {
	return &Handler{notes: notes, chat: chatSvc}
}

// decode reads a JSON body into v and runs its Validate method, writing a
// 400 response on failure.
func decode[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request, v *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := (*v).Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// Chat handles POST /api/chat.
//
//	@Summary		Send a chat message
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"Message"
//	@Success		200		{object}	ChatReply
//	@Failure		400		{object}	errResponse
//	@Failure		429		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decode(w, r, &req) {
		return
	}
	reply, err := h.chat.Send(r.Context(), OwnerFrom(r.Context()), req.Message)
	if err != nil {
		writeError(w, r, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// ChatHistory handles GET /api/chat.
//
//	@Summary		Get the conversation history
//	@Tags			chat
//	@Produce		json
//	@Success		200	{object}	ChatHistoryResponse
//	@Security		BearerAuth
//	@Router			/chat [get]
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.History(r.Context(), OwnerFrom(r.Context()))
	if err != nil {
		writeError(w, r, "chat history", err)
		return
	}
	writeJSON(w, http.StatusOK, ChatHistoryResponse{Messages: msgs})
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes
//	@Tags			notes
//	@Produce		json
//	@Param			deleted	query		bool	false	"List soft-deleted notes"
//	@Param			status	query		string	false	"Completion filter"	Enums(completed, uncompleted)
//	@Param			limit	query		int		false	"Max notes"
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deleted, _ := strconv.ParseBool(q.Get("deleted"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	status := strings.ToLower(q.Get("status"))
	if err := statusFilter(status); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("status: "+err.Error()))
		return
	}

	notes, err := h.notes.ListNotes(r.Context(), OwnerFrom(r.Context()), noteservice.ListFilter{
		Deleted: deleted,
		Status:  status,
		Limit:   limit,
	})
	if err != nil {
		writeError(w, r, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetNote(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get note", err)
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	note, err := h.notes.CreateNote(r.Context(), OwnerFrom(r.Context()), req.Title, req.Content)
	if err != nil {
		writeError(w, r, "create note", err)
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Update a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Note id"
//	@Param			If-Match	header		string				false	"Checksum for optimistic concurrency"
//	@Param			body		body		UpdateNoteRequest	true	"Fields to change"
//	@Success		200			{object}	NoteDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if !decode(w, r, &req) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	note, err := h.notes.UpdateNote(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"), noteservice.Changes{
		Title:     req.Title,
		Content:   req.Content,
		Completed: req.Completed,
	}, ifMatch)
	if err != nil {
		writeError(w, r, "update note", err)
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Soft-delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.DeleteNote(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreNote handles POST /api/notes/{id}/restore.
//
//	@Summary		Restore a soft-deleted note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/restore [post]
func (h *Handler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.RestoreNote(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "restore note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
