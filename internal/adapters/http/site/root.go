// Package site serves the embedded what-if dashboard.
package site

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// Register mounts the dashboard as the router's catch-all. Call it after
// every other route has been registered.
func Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.PathPrefix("/").Handler(NewRootHandler()).Methods(http.MethodGet, http.MethodHead)
}

// RootHandler serves the embedded dashboard files.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP serves GET / and the dashboard assets.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	h.files.ServeHTTP(w, r)
}
