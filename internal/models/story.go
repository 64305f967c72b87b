package models

import "time"

// StoryTTL is the visibility window measured from CreatedAt. Expiry
// is enforced at query time; rows may outlive the window until the
// eviction job removes them.
const StoryTTL = 24 * time.Hour

type Story struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"ownerId"`
	MediaURL  string    `gorm:"not null" json:"mediaUrl"`
	MediaType string    `gorm:"type:varchar(16)" json:"mediaType"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Owner   User        `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	Viewers []StoryView `gorm:"foreignKey:StoryID" json:"viewers,omitempty"`
}

// Expired reports whether the story is outside its visibility window
// at the given instant.
func (s *Story) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) >= StoryTTL
}

// StoryView records one viewer of one story; the set grows
// monotonically and each viewer is recorded at most once.
type StoryView struct {
	StoryID   uint      `gorm:"primaryKey;autoIncrement:false" json:"storyId"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
