package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/configuration"
	"github.com/strataai/strata/store"
)

//go:embed templates
var templatesFS embed.FS

type PageData struct {
	Title         string
	Query         string
	ShowBack      bool
	Conversation  *ConversationViewModel
	Conversations []ConversationViewModel
	CurrentPage   int
	TotalPages    int
	ActiveTags    []string
	AllTags       []string
}

// ConversationViewModel represents a conversation with formatted time for the template
type ConversationViewModel struct {
	*store.Conversation
	FormattedTime string
}

// NewServeCmd creates a new serve command
func NewServeCmd(config *configuration.Config, s *store.Store) *cobra.Command {
	var opts struct {
		ListenAddress string
		PageSize      int
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a web interface for viewing cached conversations",
		Long:  "Serve a web interface for viewing cached conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ListenAddress == "" && config.Viewer != nil {
				opts.ListenAddress = config.Viewer.ListenAddress
			}
			server := &Server{
				store:    s,
				pageSize: opts.PageSize,
			}
			return server.Start(opts.ListenAddress)
		},
	}

	cmd.Flags().StringVarP(&opts.ListenAddress, "listen", "l", "", "Address to serve on")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 50, "Number of conversations to display")
	return cmd
}

// Server handles the web interface
type Server struct {
	store    *store.Store
	pageSize int
	tmpl     *template.Template
}

func (s *Server) Start(listenAddress string) error {
	funcMap := sprig.HtmlFuncMap()
	funcMap["formatMessage"] = formatMessage

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS,
		"templates/*.tmpl",
		"templates/pages/*.tmpl",
	)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	s.tmpl = tmpl

	http.HandleFunc("/", s.handleInbox)
	http.HandleFunc("/conversation/", s.handleConversationRoutes)

	fmt.Printf("Server starting on http://%s\n", listenAddress)
	return http.ListenAndServe(listenAddress, nil)
}

func (s *Server) handleConversationRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 3 {
		http.NotFound(w, r)
		return
	}

	conversationID := parts[2]

	// Handle different routes based on the path and method
	switch {
	case r.Method == "GET" && len(parts) == 3:
		s.handleConversation(w, r)
	case r.Method == "POST" && len(parts) == 4 && parts[3] == "tags":
		s.handleAddTag(w, r, conversationID)
	case r.Method == "POST" && len(parts) == 4 && parts[3] == "pin":
		s.handleTogglePin(w, r, conversationID)
	case r.Method == "DELETE" && len(parts) == 3:
		s.handleDeleteConversation(w, r, conversationID)
	case r.Method == "DELETE" && len(parts) == 5 && parts[3] == "tags":
		s.handleRemoveTag(w, r, conversationID, parts[4])
	default:
		http.NotFound(w, r)
	}
}
