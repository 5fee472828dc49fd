package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bulletnotes/auth"
	"bulletnotes/enhance"
	"bulletnotes/middleware"
	"bulletnotes/store"

	"github.com/go-chi/chi/v5"
)

// NotesHandler serves ownership-scoped note and bullet-point CRUD.
type NotesHandler struct {
	Notes    *store.NoteStore
	Enhancer *enhance.Enhancer
}

type noteCreateRequest struct {
	Title string `json:"title"`
}

type noteUpdateRequest struct {
	Title *string `json:"title"`
}

type bulletCreateRequest struct {
	Content         string `json:"content"`
	Completed       bool   `json:"completed"`
	Enhance         bool   `json:"enhance"`
	EnhancementType string `json:"enhancement_type"`
}

type bulletUpdateRequest struct {
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
}

func (h *NotesHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	var req noteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	note, err := h.Notes.CreateNote(r.Context(), identity.UserID, req.Title)
	if err != nil {
		http.Error(w, "could not create note", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(note)
}

func (h *NotesHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	notes, err := h.Notes.ListNotes(r.Context(), identity.UserID)
	if err != nil {
		http.Error(w, "could not list notes", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(notes)
}

func (h *NotesHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	noteID, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}

	note, err := h.Notes.GetNote(r.Context(), identity.UserID, noteID)
	if err != nil {
		writeStoreError(w, err, "note not found")
		return
	}
	json.NewEncoder(w).Encode(note)
}

func (h *NotesHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	noteID, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}

	var req noteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	note, err := h.Notes.UpdateNote(r.Context(), identity.UserID, noteID, req.Title)
	if err != nil {
		writeStoreError(w, err, "note not found")
		return
	}
	json.NewEncoder(w).Encode(note)
}

func (h *NotesHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	noteID, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}

	if err := h.Notes.DeleteNote(r.Context(), identity.UserID, noteID); err != nil {
		writeStoreError(w, err, "note not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotesHandler) CreateBulletPoint(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	noteID, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}

	var req bulletCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	content := req.Content
	if req.Enhance {
		content = h.Enhancer.Enhance(r.Context(), content, enhance.Kind(req.EnhancementType))
	}

	bullet, err := h.Notes.CreateBulletPoint(r.Context(), identity.UserID, noteID, content, req.Completed)
	if err != nil {
		writeStoreError(w, err, "note not found")
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(bullet)
}

func (h *NotesHandler) ListBulletPoints(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	noteID, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}

	bullets, err := h.Notes.ListBulletPoints(r.Context(), identity.UserID, noteID)
	if err != nil {
		writeStoreError(w, err, "note not found")
		return
	}
	json.NewEncoder(w).Encode(bullets)
}

func (h *NotesHandler) UpdateBulletPoint(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	noteID, okNote := urlID(r, "id")
	bulletID, okBullet := urlID(r, "bulletID")
	if !okNote || !okBullet {
		http.Error(w, "bullet point not found", http.StatusNotFound)
		return
	}

	var req bulletUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	bullet, err := h.Notes.UpdateBulletPoint(r.Context(), identity.UserID, noteID, bulletID, req.Content, req.Completed)
	if err != nil {
		writeStoreError(w, err, "bullet point not found")
		return
	}
	json.NewEncoder(w).Encode(bullet)
}

func (h *NotesHandler) DeleteBulletPoint(w http.ResponseWriter, r *http.Request) {
	identity := mustIdentity(r)
	noteID, okNote := urlID(r, "id")
	bulletID, okBullet := urlID(r, "bulletID")
	if !okNote || !okBullet {
		http.Error(w, "bullet point not found", http.StatusNotFound)
		return
	}

	if err := h.Notes.DeleteBulletPoint(r.Context(), identity.UserID, noteID, bulletID); err != nil {
		writeStoreError(w, err, "bullet point not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mustIdentity returns the identity resolved by RequireAuth; the routes using
// it are only reachable through that middleware.
func mustIdentity(r *http.Request) auth.Identity {
	identity, _ := middleware.IdentityFrom(r.Context())
	return identity
}

func urlID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, notFoundMsg, http.StatusNotFound)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}
