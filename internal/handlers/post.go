package handlers

import (
	"errors"
	"net/http"

	"github.com/blogdb/server/internal/services"
	"github.com/blogdb/server/internal/session"
	"github.com/blogdb/server/internal/store"
	"github.com/blogdb/server/types"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const forbiddenMessage = "You can only change your own posts."

// PostHandler serves the post pages and mutations.
type PostHandler struct {
	postService *services.PostService
	renderer    Renderer
	logger      *logrus.Logger
}

// NewPostHandler constructs a PostHandler with the provided dependencies.
func NewPostHandler(postService *services.PostService, renderer Renderer, logger *logrus.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		renderer:    renderer,
		logger:      logger,
	}
}

// PostRouter registers post routes on the given router.
// Edit and delete only require a session when ownership is enforced.
func PostRouter(r chi.Router, handler *PostHandler) {
	r.Get("/", handler.ListPosts)
	r.With(RequireSession).Get("/create-post", handler.CreatePostPage)
	r.With(RequireSession).Post("/create-post", handler.CreatePost)

	editGate := func(next http.Handler) http.Handler { return next }
	if handler.postService.OwnershipEnforced() {
		editGate = RequireSession
	}
	r.With(editGate).Get("/edit-post/{postID}", handler.EditPostPage)
	r.With(editGate).Post("/edit-post/{postID}", handler.EditPost)
	r.With(editGate).Post("/delete-post/{postID}", handler.DeletePost)
}

type indexPage struct {
	Blogs []types.Post
	User  *session.Session
}

// ListPosts renders every post, newest first.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		logError(h.logger, r, "list posts", err)
		writeText(w, http.StatusInternalServerError, "Error retrieving blog posts.")
		return
	}

	render(w, r, h.renderer, h.logger, http.StatusOK, "index", indexPage{
		Blogs: posts,
		User:  session.FromContext(r.Context()),
	})
}

// CreatePostPage renders the create form for the signed-in account.
func (h *PostHandler) CreatePostPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.renderer, h.logger, http.StatusOK, "create-post", struct {
		User *session.Session
	}{User: session.FromContext(r.Context())})
}

// CreatePost stores a post for the session's account and redirects home.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	form, err := decodeCreatePostForm(r)
	if err != nil {
		renderFormError(w, r, h.renderer, h.logger, err, "/create-post")
		return
	}

	_, err = h.postService.Create(r.Context(), session.FromContext(r.Context()), services.CreatePostInput{
		CreatorName: form.CreatorName,
		Title:       form.Title,
		Body:        form.Body,
	})
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			redirect(w, r, "/signin")
			return
		}
		logError(h.logger, r, "create post", err)
		writeText(w, http.StatusInternalServerError, "Error creating blog post.")
		return
	}

	redirect(w, r, "/")
}

// EditPostPage renders the edit form prefilled with the post.
func (h *PostHandler) EditPostPage(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeText(w, http.StatusNotFound, "Post not found.")
		return
	}

	post, err := h.postService.GetForEdit(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			redirect(w, r, "/signin")
		case errors.Is(err, services.ErrForbidden):
			writeText(w, http.StatusForbidden, forbiddenMessage)
		default:
			if !errors.Is(err, store.ErrNotFound) {
				logError(h.logger, r, "get post", err)
			}
			writeText(w, http.StatusNotFound, "Post not found.")
		}
		return
	}

	render(w, r, h.renderer, h.logger, http.StatusOK, "edit-post", struct {
		Blog types.Post
	}{Blog: post})
}

// EditPost overwrites the title and body, then redirects home.
func (h *PostHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	form, err := decodeEditPostForm(r)
	if err != nil {
		renderFormError(w, r, h.renderer, h.logger, err, r.URL.Path)
		return
	}

	err = h.postService.Update(r.Context(), session.FromContext(r.Context()), id, form.Title, form.Body)
	if err != nil {
		h.mutationError(w, r, "update post", err, "Error updating blog post.")
		return
	}

	redirect(w, r, "/")
}

// DeletePost removes the post and redirects home.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.postService.Delete(r.Context(), session.FromContext(r.Context()), id); err != nil {
		h.mutationError(w, r, "delete post", err, "Error deleting blog post.")
		return
	}

	redirect(w, r, "/")
}

func (h *PostHandler) mutationError(w http.ResponseWriter, r *http.Request, op string, err error, message string) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		redirect(w, r, "/signin")
	case errors.Is(err, services.ErrForbidden):
		writeText(w, http.StatusForbidden, forbiddenMessage)
	default:
		logError(h.logger, r, op, err)
		writeText(w, http.StatusInternalServerError, message)
	}
}
