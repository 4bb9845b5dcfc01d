package types

import "time"

// Post represents a blog post.
type Post struct {
	// ID is the unique identifier assigned by the store on creation.
	ID int `json:"id" db:"blog_id"`

	// CreatorName is the display name captured from the creation form.
	// It is not re-validated against the creator's account.
	CreatorName string `json:"creator_name" db:"creator_name"`

	// CreatorUserID references the account that created the post.
	CreatorUserID int `json:"creator_user_id" db:"creator_user_id"`

	// Title is the headline of the post.
	Title string `json:"title" db:"title"`

	// Body is the free-form text content.
	Body string `json:"body" db:"body"`

	// DateCreated is assigned by the database at insertion.
	DateCreated time.Time `json:"date_created" db:"date_created"`
}

// PostEventType names a post lifecycle transition.
type PostEventType string

const (
	PostCreated PostEventType = "post.created"
	PostUpdated PostEventType = "post.updated"
	PostDeleted PostEventType = "post.deleted"
)

// PostEvent is published after a post mutation succeeds.
type PostEvent struct {
	Type       PostEventType `json:"type"`
	PostID     int           `json:"post_id"`
	Title      string        `json:"title,omitempty"`
	ActorID    int           `json:"actor_id,omitempty"`
	ActorName  string        `json:"actor_name,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
