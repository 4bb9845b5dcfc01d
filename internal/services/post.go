package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blogdb/server/internal/events"
	"github.com/blogdb/server/internal/session"
	"github.com/blogdb/server/internal/store"
	"github.com/blogdb/server/types"
	"github.com/sirupsen/logrus"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, id int, title, body string) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// CreatePostInput carries the fields of the create form.
type CreatePostInput struct {
	// CreatorName is shown as the author. It is taken from the form as-is
	// and may differ from the session's name.
	CreatorName string
	Title       string
	Body        string
}

// PostOptions toggles optional post workflow behavior.
type PostOptions struct {
	// EnforceOwnership requires a session owning the post for edit and delete.
	EnforceOwnership bool
}

// PostService encapsulates post use-cases.
type PostService struct {
	repo      PostRepository
	publisher events.Publisher
	logger    *logrus.Logger
	opts      PostOptions
	now       func() time.Time
}

func NewPostService(repo PostRepository, publisher events.Publisher, logger *logrus.Logger, opts PostOptions) *PostService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PostService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// OwnershipEnforced reports whether edit and delete require the owner's session.
func (s *PostService) OwnershipEnforced() bool {
	return s.opts.EnforceOwnership
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]types.Post, error) {
	return s.repo.List(ctx)
}

// Get returns a single post or store.ErrNotFound.
func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.Get(ctx, id)
}

// GetForEdit returns the post for the edit form. When ownership is enforced
// the session must own the post.
func (s *PostService) GetForEdit(ctx context.Context, sess *session.Session, id int) (types.Post, error) {
	if s.opts.EnforceOwnership {
		if err := RequireSession(sess); err != nil {
			return types.Post{}, err
		}
	}
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Post{}, err
	}
	if s.opts.EnforceOwnership && post.CreatorUserID != sess.UserID {
		return types.Post{}, ErrForbidden
	}
	return post, nil
}

// Create stores a post authored by the session's account.
func (s *PostService) Create(ctx context.Context, sess *session.Session, in CreatePostInput) (types.Post, error) {
	if err := RequireSession(sess); err != nil {
		return types.Post{}, err
	}

	creatorName := in.CreatorName
	if strings.TrimSpace(creatorName) == "" {
		creatorName = sess.Name
	}

	post, err := s.repo.Create(ctx, types.Post{
		CreatorName:   creatorName,
		CreatorUserID: sess.UserID,
		Title:         in.Title,
		Body:          in.Body,
	})
	if err != nil {
		return types.Post{}, err
	}

	s.publish(ctx, types.PostEvent{
		Type:      types.PostCreated,
		PostID:    post.ID,
		Title:     post.Title,
		ActorID:   sess.UserID,
		ActorName: sess.Name,
	})
	return post, nil
}

// Update overwrites title and body. Updating a missing post is a no-op.
func (s *PostService) Update(ctx context.Context, sess *session.Session, id int, title, body string) error {
	if err := s.authorize(ctx, sess, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	affected, err := s.repo.Update(ctx, id, title, body)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.publish(ctx, actorEvent(types.PostUpdated, id, title, sess))
	}
	return nil
}

// Delete removes the post. Deleting a missing post is a no-op.
func (s *PostService) Delete(ctx context.Context, sess *session.Session, id int) error {
	if err := s.authorize(ctx, sess, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.publish(ctx, actorEvent(types.PostDeleted, id, "", sess))
	}
	return nil
}

// authorize is a no-op unless ownership is enforced.
func (s *PostService) authorize(ctx context.Context, sess *session.Session, id int) error {
	if !s.opts.EnforceOwnership {
		return nil
	}
	if err := RequireSession(sess); err != nil {
		return err
	}
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.CreatorUserID != sess.UserID {
		return ErrForbidden
	}
	return nil
}

func (s *PostService) publish(ctx context.Context, event types.PostEvent) {
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"event":   event.Type,
			"post_id": event.PostID,
		}).WithError(err).Warn("post event not published")
	}
}

func actorEvent(eventType types.PostEventType, id int, title string, sess *session.Session) types.PostEvent {
	event := types.PostEvent{Type: eventType, PostID: id, Title: title}
	if sess != nil {
		event.ActorID = sess.UserID
		event.ActorName = sess.Name
	}
	return event
}
