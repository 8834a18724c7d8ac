package handlers

import (
	"context"
	"net/http"

	"github.com/ronitphilip/zoom-backend/internal/zoom"
)

// UserLister is the upstream directory source.
type UserLister interface {
	ListUsers(ctx context.Context) ([]zoom.RawUser, error)
}

// DirectoryHandler serves the contact-center agent directory straight from
// upstream; it is never cached locally.
type DirectoryHandler struct {
	users UserLister
}

func NewDirectoryHandler(users UserLister) *DirectoryHandler {
	return &DirectoryHandler{users: users}
}

func (h *DirectoryHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
