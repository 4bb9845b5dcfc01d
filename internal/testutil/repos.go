// Package testutil provides in-memory repositories for handler and service tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blogdb/server/internal/store"
	"github.com/blogdb/server/types"
)

// UserRepo is an in-memory users table with a unique name constraint.
type UserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]types.User
	// Err, when set, is returned from every call.
	Err error
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]types.User)}
}

func (r *UserRepo) GetByName(_ context.Context, name string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return types.User{}, r.Err
	}
	user, ok := r.users[name]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return types.User{}, r.Err
	}
	if _, exists := r.users[user.Name]; exists {
		return types.User{}, store.ErrDuplicate
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.Name] = user
	return user, nil
}

// Count returns the number of stored users.
func (r *UserRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// PostRepo is an in-memory blogs table. Creation times strictly increase.
type PostRepo struct {
	mu     sync.Mutex
	nextID int
	clock  time.Time
	posts  map[int]types.Post
	// Err, when set, is returned from every call.
	Err error
}

func NewPostRepo() *PostRepo {
	return &PostRepo{
		posts: make(map[int]types.Post),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *PostRepo) List(_ context.Context) ([]types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	posts := make([]types.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].DateCreated.Equal(posts[j].DateCreated) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].DateCreated.After(posts[j].DateCreated)
	})
	return posts, nil
}

func (r *PostRepo) Get(_ context.Context, id int) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return types.Post{}, r.Err
	}
	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (r *PostRepo) Create(_ context.Context, post types.Post) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return types.Post{}, r.Err
	}
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	post.ID = r.nextID
	post.DateCreated = r.clock
	r.posts[post.ID] = post
	return post, nil
}

func (r *PostRepo) Update(_ context.Context, id int, title, body string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	post, ok := r.posts[id]
	if !ok {
		return 0, nil
	}
	post.Title = title
	post.Body = body
	r.posts[id] = post
	return 1, nil
}

func (r *PostRepo) Delete(_ context.Context, id int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	if _, ok := r.posts[id]; !ok {
		return 0, nil
	}
	delete(r.posts, id)
	return 1, nil
}

// Count returns the number of stored posts.
func (r *PostRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []types.PostEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event types.PostEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}
