package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/strataai/strata/store"
)

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	// Get page number from query parameters
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	// Get search query from query parameters
	query := r.URL.Query().Get("q")

	// Get tags from query parameters
	tags := r.URL.Query()["tag"]

	// Define page size
	const pageSize = 10

	var conversations []*store.Conversation
	var totalPages int

	// Handle either search or regular listing based on query presence
	if query != "" {
		// Handle search
		searchResponse, err := s.store.Search(&store.SearchRequest{
			Query:    query,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			http.Error(w, "Failed to search conversations", http.StatusInternalServerError)
			return
		}
		conversations = searchResponse.Conversations
		totalPages = searchResponse.PageCount
	} else {
		// Handle regular listing with optional tag filtering
		listResponse, err := s.store.List(&store.ListRequest{
			Page:     page,
			PageSize: pageSize,
			Tags:     tags,
		})
		if err != nil {
			http.Error(w, "Failed to list conversations", http.StatusInternalServerError)
			return
		}
		conversations = listResponse.Conversations
		totalPages = listResponse.PageCount
	}

	conversationViews := []ConversationViewModel{}
	// Format timestamps for each conversation
	for _, conversation := range conversations {
		conversationViews = append(conversationViews, ConversationViewModel{
			Conversation:  conversation,
			FormattedTime: time.UnixMicro(conversation.UpdateTimestamp).Format("Jan 2, 2006 3:04 PM"),
		})
	}

	// All known tags power the filter chips.
	allTags, err := s.store.Tags()
	if err != nil {
		http.Error(w, "Failed to list tags", http.StatusInternalServerError)
		return
	}

	// Prepare template data using PageData
	data := &PageData{
		Title:         "Inbox",
		Conversations: conversationViews,
		CurrentPage:   page,
		TotalPages:    totalPages,
		Query:         query,
		ActiveTags:    tags,
		AllTags:       allTags,
	}

	// Execute template
	if err := s.tmpl.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}
