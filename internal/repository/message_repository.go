package repository

import (
	"social-service/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(msg *models.Message) error
	FindByID(id uint) (*models.Message, error)
	// History returns every message exchanged between the pair, both
	// directions, ascending by created_at with id as tiebreaker.
	History(userA, userB uint) ([]models.Message, error)
	Delete(id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) FindByID(id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) History(userA, userB uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.
		Preload("Sender").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at, id").
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) Delete(id uint) error {
	return r.db.Delete(&models.Message{}, "id = ?", id).Error
}
