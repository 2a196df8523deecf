package server

import (
	"net/http"
)

func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request, conversationID, tagToRemove string) {
	// Get existing conversation
	conversation, err := s.store.Get(conversationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Remove the tag
	newTags := make([]string, 0, len(conversation.Tags))
	for _, tag := range conversation.Tags {
		if tag != tagToRemove {
			newTags = append(newTags, tag)
		}
	}

	if err := s.store.SetTags(conversationID, newTags); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
