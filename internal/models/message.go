package models

import "time"

// Message is a direct message between two users. Immutable once
// created; the sender may hard-delete it.
type Message struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_messages_pair" json:"senderId"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_pair" json:"receiverId"`
	Text       string    `gorm:"not null" json:"text"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`

	Sender User `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`
}
