package models

import "time"

type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
	FriendStatusRejected FriendStatus = "rejected"
)

// Active reports whether the edge blocks new requests between the
// same pair. Pending and accepted edges are active; rejected ones
// are dead and may be superseded.
func (s FriendStatus) Active() bool {
	return s == FriendStatusPending || s == FriendStatusAccepted
}

// FriendRequest is a directed edge in the friendship graph. At most
// one active edge may exist between any unordered pair of users,
// checked across both directions.
type FriendRequest struct {
	ID        uint         `gorm:"primarykey" json:"id"`
	FromID    uint         `gorm:"not null;index" json:"fromId"`
	ToID      uint         `gorm:"not null;index" json:"toId"`
	Status    FriendStatus `gorm:"not null;type:varchar(16)" json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"-"`

	From User `gorm:"foreignKey:FromID;references:ID" json:"from,omitempty"`
	To   User `gorm:"foreignKey:ToID;references:ID" json:"to,omitempty"`
}
