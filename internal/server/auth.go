package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/shopfront/pricegrab/internal/types"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hash failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	err = s.stores.Users.Create(r.Context(), types.User{
		Username:     req.Username,
		PasswordHash: hash,
	})
	if errors.Is(err, types.ErrUserExists) {
		respondMessage(w, r, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		s.logger.Error("create user failed", "username", req.Username, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	s.logger.Info("user created", "username", req.Username)
	respondMessage(w, r, http.StatusCreated, "User created")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondMessage(w, r, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := s.stores.Users.Get(r.Context(), req.Username)
	if errors.Is(err, types.ErrUserNotFound) {
		respondMessage(w, r, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.logger.Error("user lookup failed", "username", req.Username, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error logging in", err)
		return
	}

	if err := s.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		respondMessage(w, r, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := s.auth.IssueToken(user.Username)
	if err != nil {
		s.logger.Error("token issue failed", "username", req.Username, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error logging in", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	s.logger.Info("login successful", "username", user.Username)
	respondMessage(w, r, http.StatusOK, "Login successful")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	respondMessage(w, r, http.StatusOK, "Logout successful")
}
