package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHas(t *testing.T) {
	tests := []struct {
		name       string
		held       []string
		permission string
		want       bool
	}{
		{name: "exact match", held: []string{"users::read"}, permission: "users::read", want: true},
		{name: "missing", held: []string{"users::read"}, permission: "users::edit", want: false},
		{name: "global wildcard", held: []string{"*"}, permission: "config::providers::edit", want: true},
		{name: "category wildcard", held: []string{"users::*"}, permission: "users::edit", want: true},
		{name: "nested category wildcard", held: []string{"config::*"}, permission: "config::providers::edit", want: true},
		{name: "wildcard wrong category", held: []string{"users::*"}, permission: "groups::read", want: false},
		{name: "wildcard no partial segment match", held: []string{"users::*"}, permission: "usersextra::read", want: false},
		{name: "empty set", held: nil, permission: "users::read", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewSet(tt.held)
			assert.Equal(t, tt.want, set.Has(tt.permission))
		})
	}
}

func TestHasAllAny(t *testing.T) {
	set := NewSet([]string{"users::read", "groups::*"})

	assert.True(t, set.HasAll("users::read", "groups::edit"))
	assert.False(t, set.HasAll("users::read", "users::edit"))
	assert.True(t, set.HasAny("users::edit", "groups::read"))
	assert.False(t, set.HasAny("users::edit", "config::models::read"))
}

func TestNilSetDeniesEverything(t *testing.T) {
	var set *Set
	assert.False(t, set.Has("users::read"))
	assert.False(t, set.HasAny("users::read"))
	assert.True(t, set.HasAll()) // vacuously
}

func TestGateRender(t *testing.T) {
	set := NewSet([]string{"users::read"})

	allowed := set.Gate("users::read", Hide)
	assert.True(t, allowed.Allowed())
	assert.Equal(t, "Users", allowed.Render("Users"))

	hidden := set.Gate("users::edit", Hide)
	assert.False(t, hidden.Allowed())
	assert.Empty(t, hidden.Render("Edit user"))

	disabled := set.Gate("users::edit", Disable)
	assert.False(t, disabled.Allowed())
	assert.NotEmpty(t, disabled.Render("Edit user"))
}
