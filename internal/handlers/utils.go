package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const maxFormBytes = 1 << 20

// Renderer renders a named page with the given data.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}

func render(w http.ResponseWriter, r *http.Request, renderer Renderer, logger *logrus.Logger, status int, page string, data any) {
	if err := renderer.Render(w, status, page, data); err != nil {
		logError(logger, r, "render "+page, err)
		writeText(w, http.StatusInternalServerError, "Error rendering page.")
	}
}

func logError(logger *logrus.Logger, r *http.Request, op string, err error) {
	logger.WithFields(logrus.Fields{
		"op":         op,
		"request_id": middleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
	}).WithError(err).Error("request failed")
}

func parseForm(r *http.Request) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
	return r.ParseForm()
}

func parsePostID(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "postID"))
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}
