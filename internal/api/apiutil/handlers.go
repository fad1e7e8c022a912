package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/pickup/internal/api/htmx"
)

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// WriteError logs err and answers with its status and message. Errors that
// are not a HandlerError become a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	herr, ok := err.(HandlerError)
	if !ok {
		herr = HandlerError{Status: http.StatusInternalServerError, Message: "Internal Server Error", Err: err}
	}

	event := log.Ctx(r.Context()).Warn()
	if herr.Status >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	event.Err(herr.Err).Int("status", herr.Status).Msg(herr.Message)

	http.Error(w, herr.Message, herr.Status)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WantsJSON reports whether the client asked for JSON over HTML.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// RenderHTMLComponent buffers component so a render failure can still be
// answered with a clean 500. It reports whether the page was written.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, headers map[string]string, logMessage, errorMessage string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMessage)
		http.Error(w, errorMessage, http.StatusInternalServerError)
		return false
	}

	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Failed to write response")
	}
	return true
}

// Redirect sends a 303 to target, or an HX-Redirect for HTMX requests so the
// browser performs a full navigation.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if htmx.IsRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
