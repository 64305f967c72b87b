package repository

import (
	"time"

	"social-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoryRepository interface {
	Create(story *models.Story) error
	FindByID(id uint) (*models.Story, error)
	// ListActiveByOwners returns stories owned by any of the given
	// users created at or after the cutoff, newest first.
	ListActiveByOwners(ownerIDs []uint, cutoff time.Time) ([]models.Story, error)
	// AddViewer records the viewer once; repeated calls are no-ops.
	AddViewer(storyID, userID uint) error
	Delete(id uint) error
	// DeleteExpired evicts stories created before the cutoff and
	// returns the number of rows removed.
	DeleteExpired(cutoff time.Time) (int64, error)
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(story *models.Story) error {
	return r.db.Create(story).Error
}

func (r *storyRepository) FindByID(id uint) (*models.Story, error) {
	var story models.Story
	err := r.db.
		Preload("Owner").
		Preload("Viewers").
		First(&story, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) ListActiveByOwners(ownerIDs []uint, cutoff time.Time) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.
		Preload("Owner").
		Preload("Viewers").
		Where("owner_id IN ? AND created_at > ?", ownerIDs, cutoff).
		Order("created_at DESC").
		Find(&stories).Error
	return stories, err
}

func (r *storyRepository) AddViewer(storyID, userID uint) error {
	return r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.StoryView{
			StoryID:   storyID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}).Error
}

func (r *storyRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.StoryView{}, "story_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Story{}, "id = ?", id).Error
	})
}

func (r *storyRepository) DeleteExpired(cutoff time.Time) (int64, error) {
	var expired []uint
	err := r.db.Model(&models.Story{}).
		Where("created_at <= ?", cutoff).
		Pluck("id", &expired).Error
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var removed int64
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.StoryView{}, "story_id IN ?", expired).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Story{}, "id IN ?", expired)
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}
