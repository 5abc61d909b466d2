package library

import (
	"time"

	"scholarvault/internal/httputil"
)

// Collection is a user-defined folder. Collections form a forest through
// ParentID; nil means root level.
type Collection struct {
	ID        string    `json:"id" yaml:"id" db:"id"`
	UserID    string    `json:"user_id" yaml:"user_id" db:"user_id"`
	Name      string    `json:"name" yaml:"name" db:"name"`
	ParentID  *string   `json:"parent_id" yaml:"parent_id" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" db:"updated_at"`
}

// IsRoot returns true if the collection is at the root level.
func (c *Collection) IsRoot() bool {
	return c.ParentID == nil
}

// HasParent reports whether the collection's parent equals parentID (nil = root)
func (c *Collection) HasParent(parentID *string) bool {
	if c.ParentID == nil || parentID == nil {
		return c.ParentID == nil && parentID == nil
	}
	return *c.ParentID == *parentID
}

// CollectionPatch is the body of a collection update. An absent ParentID
// leaves the parent alone; a present nil moves the collection to root.
type CollectionPatch struct {
	Name     *string                 `json:"name,omitempty"`
	ParentID httputil.OptionalString `json:"parent_id,omitzero"`
}
