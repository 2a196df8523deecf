package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) != 3 {
		http.NotFound(w, r)
		return
	}

	conversationID := parts[2]
	conversation, err := s.store.Get(conversationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	viewModel := ConversationViewModel{
		Conversation:  conversation,
		FormattedTime: time.UnixMicro(conversation.UpdateTimestamp).Format(time.RFC822),
	}

	title := conversationID
	if conversation.Title != nil {
		title = *conversation.Title
	}
	data := PageData{
		Title:        fmt.Sprintf("Conversation %s", title),
		ShowBack:     true,
		Conversation: &viewModel,
	}

	if err := s.tmpl.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request, conversationID string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	tag := r.FormValue("tag")
	if tag == "" {
		http.Error(w, "Tag cannot be empty", http.StatusBadRequest)
		return
	}

	// Get existing conversation
	conversation, err := s.store.Get(conversationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Add new tag
	if err := s.store.SetTags(conversationID, append(conversation.Tags, tag)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Redirect back to conversation page
	http.Redirect(w, r, "/conversation/"+conversationID, http.StatusSeeOther)
}

func (s *Server) handleTogglePin(w http.ResponseWriter, r *http.Request, conversationID string) {
	conversation, err := s.store.Get(conversationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.store.SetPinned(conversationID, !conversation.Pinned); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/conversation/"+conversationID, http.StatusSeeOther)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request, conversationID string) {
	if err := s.store.Delete(conversationID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// If the request is AJAX, return 200 OK
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Otherwise redirect to inbox
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
