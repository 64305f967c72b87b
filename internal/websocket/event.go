package websocket

import (
	"time"

	"social-service/internal/models"

	"github.com/google/uuid"
)

// EventType identifies a push event on the wire.
type EventType string

const (
	EventTypeConnect        EventType = "connection.connect"
	EventTypeNewMessage     EventType = "message.new"
	EventTypeMessageDeleted EventType = "message.deleted"
	EventTypeFriendRequest  EventType = "friend.request"
	EventTypeFriendAccept   EventType = "friend.accept"
	EventTypePostUpdated    EventType = "post.updated"
	EventTypeNewStory       EventType = "story.new"
	EventTypeError          EventType = "error"
)

func (et EventType) String() string {
	return string(et)
}

func (et EventType) IsValid() bool {
	switch et {
	case EventTypeConnect, EventTypeNewMessage, EventTypeMessageDeleted,
		EventTypeFriendRequest, EventTypeFriendAccept, EventTypePostUpdated,
		EventTypeNewStory, EventTypeError:
		return true
	default:
		return false
	}
}

// Event is the envelope pushed to live connections. Data is one of
// the payload structs below, chosen by Type.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp int64     `json:"timestamp"`
}

func NewEvent(eventType EventType, data any) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

type ConnectData struct {
	ConnectionID string `json:"connectionId"`
	UserID       uint   `json:"userId"`
}

type MessageDeletedData struct {
	MessageID uint `json:"messageId"`
}

type FriendRequestData struct {
	RequestID uint `json:"requestId"`
	FromID    uint `json:"fromId"`
	ToID      uint `json:"toId"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewConnectEvent(connectionID string, userID uint) *Event {
	return NewEvent(EventTypeConnect, ConnectData{ConnectionID: connectionID, UserID: userID})
}

func NewMessageEvent(msg *models.Message) *Event {
	return NewEvent(EventTypeNewMessage, msg)
}

func NewMessageDeletedEvent(messageID uint) *Event {
	return NewEvent(EventTypeMessageDeleted, MessageDeletedData{MessageID: messageID})
}

func NewFriendRequestEvent(req *models.FriendRequest) *Event {
	return NewEvent(EventTypeFriendRequest, FriendRequestData{
		RequestID: req.ID,
		FromID:    req.FromID,
		ToID:      req.ToID,
	})
}

func NewFriendAcceptEvent(req *models.FriendRequest) *Event {
	return NewEvent(EventTypeFriendAccept, FriendRequestData{
		RequestID: req.ID,
		FromID:    req.FromID,
		ToID:      req.ToID,
	})
}

func NewPostUpdatedEvent(post *models.Post) *Event {
	return NewEvent(EventTypePostUpdated, post)
}

func NewStoryEvent(story *models.Story) *Event {
	return NewEvent(EventTypeNewStory, story)
}

func NewErrorEvent(code, message string) *Event {
	return NewEvent(EventTypeError, ErrorData{Code: code, Message: message})
}
