package server

import (
	"net/http"

	"github.com/go-chi/render"
)

// envelope is the standard failure (and plain-message) response body.
type envelope struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Message: message})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	body := envelope{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}
