package handlers

import (
	"errors"
	"net/http"

	"vault-backend/internal/middleware"
	"vault-backend/internal/services"
	"vault-backend/internal/storage"
	"vault-backend/utils/response"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles the registration form. A session is issued right away,
// but the client is still sent to the login page.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Text(w, http.StatusBadRequest, "Invalid form")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.service.Register(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateUsername) {
			response.Text(w, http.StatusOK, "Username already taken.")
			return
		}
		response.Text(w, http.StatusInternalServerError, "Registration failed.")
		return
	}

	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Text(w, http.StatusBadRequest, "Invalid form")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Text(w, http.StatusOK, "Invalid credentials")
			return
		}
		response.Text(w, http.StatusInternalServerError, "Login failed.")
		return
	}

	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout destroys the session if one exists and always lands on the login
// page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			response.Text(w, http.StatusInternalServerError, "Logout failed.")
			return
		}
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
