package handlers

import (
	"errors"
	"net/http"

	"github.com/blogdb/server/internal/services"
	"github.com/blogdb/server/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const invalidCredentialsMessage = "Invalid username or password. Try again."

// AuthHandler serves signup, signin and logout.
type AuthHandler struct {
	authService *services.AuthService
	sessions    *session.Manager
	renderer    Renderer
	logger      *logrus.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, sessions *session.Manager, renderer Renderer, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		renderer:    renderer,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/signup", handler.SignupPage)
	r.Post("/signup", handler.Signup)
	r.Get("/signin", handler.SigninPage)
	r.Post("/signin", handler.Signin)
	r.Get("/logout", handler.Logout)
}

// RequireSession redirects anonymous clients to the signin page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := services.RequireSession(session.FromContext(r.Context())); err != nil {
			redirect(w, r, "/signin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SignupPage renders the signup form.
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.renderer, h.logger, http.StatusOK, "signup", nil)
}

// Signup creates the account and sends the client to the signin page.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	form, err := decodeSignupForm(r)
	if err != nil {
		h.formError(w, r, err, "/signup")
		return
	}

	if _, err := h.authService.Signup(r.Context(), form.Name, form.Password); err != nil {
		logError(h.logger, r, "signup", err)
		if errors.Is(err, services.ErrDuplicateName) {
			writeText(w, http.StatusConflict, "Error during signup.")
			return
		}
		writeText(w, http.StatusInternalServerError, "Error during signup.")
		return
	}

	redirect(w, r, "/signin")
}

// SigninPage renders the signin form.
func (h *AuthHandler) SigninPage(w http.ResponseWriter, r *http.Request) {
	h.renderSignin(w, r, http.StatusOK, "")
}

// Signin verifies credentials, issues a session and redirects home.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	form, err := decodeSigninForm(r)
	if err != nil {
		h.renderSignin(w, r, http.StatusBadRequest, invalidCredentialsMessage)
		return
	}

	user, err := h.authService.Signin(r.Context(), form.Name, form.Password)
	if err != nil {
		h.renderSignin(w, r, http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	if _, err := h.sessions.Issue(r.Context(), w, user.ID, user.Name); err != nil {
		logError(h.logger, r, "issue session", err)
		writeText(w, http.StatusInternalServerError, "Error during signin.")
		return
	}

	redirect(w, r, "/")
}

// Logout destroys the session, if any, and redirects home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		logError(h.logger, r, "destroy session", err)
	}
	redirect(w, r, "/")
}

func (h *AuthHandler) renderSignin(w http.ResponseWriter, r *http.Request, status int, message string) {
	render(w, r, h.renderer, h.logger, status, "signin", struct{ Message string }{Message: message})
}

func (h *AuthHandler) formError(w http.ResponseWriter, r *http.Request, err error, back string) {
	renderFormError(w, r, h.renderer, h.logger, err, back)
}

func renderFormError(w http.ResponseWriter, r *http.Request, renderer Renderer, logger *logrus.Logger, err error, back string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		render(w, r, renderer, logger, http.StatusBadRequest, "invalid", struct {
			Fields map[string]string
			Back   string
		}{Fields: verr.Fields, Back: back})
		return
	}
	writeText(w, http.StatusBadRequest, "invalid request")
}
