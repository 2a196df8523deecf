package permission

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/scylladb/go-set/strset"
)

// Well-known permissions. The server is the authority; gating here
// only shapes the UI.
const (
	UsersRead       = "users::read"
	UsersEdit       = "users::edit"
	GroupsRead      = "groups::read"
	GroupsEdit      = "groups::edit"
	ProvidersRead   = "config::providers::read"
	ProvidersEdit   = "config::providers::edit"
	ModelsRead      = "config::models::read"
	ModelsEdit      = "config::models::edit"
	RAGRead         = "rag::read"
	RAGEdit         = "rag::edit"
	ConversationUse = "conversations::use"
)

// Set holds a user's resolved permissions and answers wildcard-aware
// membership queries. A held "*" grants everything; a held
// "category::*" grants every permission under that category.
type Set struct {
	permissions *strset.Set
}

// NewSet builds a set from the permission strings the server resolved
// for the user.
func NewSet(permissions []string) *Set {
	return &Set{permissions: strset.New(permissions...)}
}

// Has reports whether the set grants the permission.
func (s *Set) Has(permission string) bool {
	if s == nil || s.permissions == nil {
		return false
	}
	if s.permissions.Has("*") || s.permissions.Has(permission) {
		return true
	}
	granted := false
	s.permissions.Each(func(held string) bool {
		if !strings.HasSuffix(held, "::*") {
			return true
		}
		prefix := strings.TrimSuffix(held, "*")
		if strings.HasPrefix(permission, prefix) {
			granted = true
			return false
		}
		return true
	})
	return granted
}

// HasAll reports whether every permission is granted.
func (s *Set) HasAll(permissions ...string) bool {
	for _, permission := range permissions {
		if !s.Has(permission) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one permission is granted.
func (s *Set) HasAny(permissions ...string) bool {
	for _, permission := range permissions {
		if s.Has(permission) {
			return true
		}
	}
	return false
}

// List returns the held permission strings, sorted.
func (s *Set) List() []string {
	if s == nil || s.permissions == nil {
		return nil
	}
	list := s.permissions.List()
	sort.Strings(list)
	return list
}

// Mode is what a gated element does when the permission is missing.
type Mode int

const (
	// Hide removes the element entirely.
	Hide Mode = iota
	// Disable renders the element dimmed and inert.
	Disable
)

var disabledStyle = lipgloss.NewStyle().Faint(true)

// Gate wraps a permission check for one UI element.
type Gate struct {
	set        *Set
	permission string
	mode       Mode
}

// Gate builds a gate for a permission.
func (s *Set) Gate(permission string, mode Mode) Gate {
	return Gate{set: s, permission: permission, mode: mode}
}

// Allowed reports whether the element should respond to input.
func (g Gate) Allowed() bool {
	return g.set.Has(g.permission)
}

// Render applies the gate to a rendered view: unchanged when allowed,
// empty when hidden, dimmed when disabled.
func (g Gate) Render(view string) string {
	if g.Allowed() {
		return view
	}
	if g.mode == Hide {
		return ""
	}
	return disabledStyle.Render(view)
}
