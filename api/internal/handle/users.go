package handle

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"study-buddy/api/internal/store"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Class    string `json:"class"`
	Board    string `json:"board"`
	Subject  string `json:"subject"`
}

// Missing lists the names of empty fields.
func (r RegisterRequest) Missing() []string {
	var out []string
	for _, f := range []struct{ name, value string }{
		{"name", r.Name},
		{"email", r.Email},
		{"password", r.Password},
		{"class", r.Class},
		{"board", r.Board},
		{"subject", r.Subject},
	} {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileResponse struct {
	Success bool           `json:"success"`
	Profile *store.Profile `json:"profile"`
}

func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStorage)
		return
	}
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if missing := req.Missing(); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "missing fields: "+strings.Join(missing, ", "))
		return
	}

	p := &store.Profile{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Class:   strings.TrimSpace(req.Class),
		Board:   strings.TrimSpace(req.Board),
		Subject: strings.TrimSpace(req.Subject),
	}
	err := h.profiles.Create(r.Context(), p, req.Password)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "email is already registered")
		return
	case errors.Is(err, store.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("users: register: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	writeJSON(w, http.StatusCreated, profileResponse{Success: true, Profile: p})
}

func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStorage)
		return
	}
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	p, err := h.profiles.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, store.ErrInvalidCredentials.Error())
		return
	case err != nil:
		log.Printf("users: login: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Success: true, Profile: p})
}
