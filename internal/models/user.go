package models

import "time"

type User struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Username   string    `gorm:"not null;type:varchar(255)" json:"username"`
	Email      string    `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	ProfilePic string    `json:"profilePic,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"-"`
}

// PublicUser is the subset of User safe to embed in friend lists,
// feeds and story groups.
type PublicUser struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic,omitempty"`
	Bio        string `json:"bio,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		Bio:        u.Bio,
	}
}
