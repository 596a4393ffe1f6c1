package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/dqs/internal/roles"
)

// RoleHandler serves the built-in role catalog
type RoleHandler struct{}

// NewRoleHandler creates a new role handler
func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// List returns every profile in catalog order
// GET /api/roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"default": roles.DefaultRole,
		"roles":   roles.Profiles(),
	})
}

// Get returns one profile. Unknown names resolve to the default role and
// the response says so.
// GET /api/roles/{name}
func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	_, exact := roles.Lookup(name)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requested": name,
		"matched":   exact,
		"profile":   roles.Get(name),
	})
}
