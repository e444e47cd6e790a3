package handlers

import (
	"net/http"
	"path/filepath"

	"vault-backend/internal/middleware"
)

// PageHandler serves the static HTML pages and the root redirect. The pages
// themselves are plain files under publicDir; only routing and gating live
// here.
type PageHandler struct {
	auth      *middleware.AuthMiddleware
	publicDir string
}

func NewPageHandler(auth *middleware.AuthMiddleware, publicDir string) *PageHandler {
	return &PageHandler{auth: auth, publicDir: publicDir}
}

// Index sends authenticated clients to the dashboard, everyone else to
// login.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if h.auth.Authenticated(r) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.publicDir, "login.html"))
}

// Register serves the signup page (historically routed at /ns).
func (h *PageHandler) Register(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.publicDir, "register.html"))
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.publicDir, "dashboard.html"))
}
