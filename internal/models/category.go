package models

import "time"

// SharedOwnerID is the sentinel owner of categories visible to every user.
// Shared categories are seeded once at bootstrap and never added at runtime.
const SharedOwnerID int64 = 0

// Category represents an income category. A category is either private to
// one user or shared (UserID == SharedOwnerID). Names are stored upper-cased
// and are unique within the owner's visible set.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_categories_owner_name" json:"user_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_categories_owner_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}

// Shared reports whether the category is visible to every user.
func (c *Category) Shared() bool {
	return c.UserID == SharedOwnerID
}
