package service

import (
	"errors"
	"strings"

	"social-service/internal/models"
	"social-service/internal/repository"
	"social-service/internal/websocket"
	"social-service/pkg/apperrors"

	"gorm.io/gorm"
)

// ChatService persists direct messages and fans them out to the live
// connections of both parties. Messaging is deliberately not gated
// on friendship; the graph only controls feed and story visibility.
type ChatService struct {
	repo repository.MessageRepository
	hub  Deliverer
}

func NewChatService(repo repository.MessageRepository, hub Deliverer) *ChatService {
	return &ChatService{repo: repo, hub: hub}
}

// Send validates and persists the message, then notifies both the
// receiver's and the sender's rooms. The sender is notified too so
// their other devices stay in sync. If persistence fails nothing is
// delivered.
func (s *ChatService) Send(sender, receiver uint, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("message text must not be empty")
	}

	msg := &models.Message{
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
	}
	if err := s.repo.Create(msg); err != nil {
		return nil, apperrors.Unavailable(err, "failed to save message")
	}

	event := websocket.NewMessageEvent(msg)
	s.hub.Deliver(receiver, event)
	s.hub.Deliver(sender, event)

	return msg, nil
}

// History returns every message between the pair, ascending by
// creation time with id as tiebreaker.
func (s *ChatService) History(userA, userB uint) ([]models.Message, error) {
	msgs, err := s.repo.History(userA, userB)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load messages")
	}
	return msgs, nil
}

// Delete hard-deletes a message. Only the sender may delete; both
// parties' rooms are told about the removal.
func (s *ChatService) Delete(messageID, actingUser uint) error {
	msg, err := s.repo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("message not found")
		}
		return apperrors.Unavailable(err, "failed to load message")
	}

	if msg.SenderID != actingUser {
		return apperrors.Forbidden("only the sender can delete a message")
	}

	if err := s.repo.Delete(messageID); err != nil {
		return apperrors.Unavailable(err, "failed to delete message")
	}

	event := websocket.NewMessageDeletedEvent(messageID)
	s.hub.Deliver(msg.SenderID, event)
	s.hub.Deliver(msg.ReceiverID, event)

	return nil
}
