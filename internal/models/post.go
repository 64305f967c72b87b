package models

import "time"

type Post struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"authorId"`
	Description string    `json:"description"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
	MediaType   string    `gorm:"type:varchar(16)" json:"mediaType,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`

	Author   User       `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Likes    []PostLike `gorm:"foreignKey:PostID" json:"likes,omitempty"`
	Comments []Comment  `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// PostLike records one user liking one post; liking twice toggles
// the like off, so the pair is unique.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"postId"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	UserID    uint      `gorm:"not null" json:"userId"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`

	User User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}
