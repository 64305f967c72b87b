package repository

import (
	"time"

	"social-service/internal/models"

	"gorm.io/gorm"
)

type PostRepository interface {
	Create(post *models.Post) error
	FindByID(id uint) (*models.Post, error)
	// ListByAuthors returns posts by any of the given authors, newest
	// first.
	ListByAuthors(authorIDs []uint) ([]models.Post, error)
	ListAll() ([]models.Post, error)
	Delete(id uint) error
	// ToggleLike adds the user's like, or removes it when already
	// present. Reports whether the post is now liked by the user.
	ToggleLike(postID, userID uint) (bool, error)
	AddComment(comment *models.Comment) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) FindByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Preload("Author").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at")
		}).
		Preload("Comments.User").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByAuthors(authorIDs []uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.
		Preload("Author").
		Preload("Likes").
		Preload("Comments.User").
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListAll() ([]models.Post, error) {
	var posts []models.Post
	err := r.db.
		Preload("Author").
		Preload("Likes").
		Preload("Comments.User").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.PostLike{}, "post_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, "post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
}

func (r *postRepository) ToggleLike(postID, userID uint) (bool, error) {
	liked := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.PostLike{}, "post_id = ? AND user_id = ?", postID, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		liked = true
		return tx.Create(&models.PostLike{
			PostID:    postID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}).Error
	})
	return liked, err
}

func (r *postRepository) AddComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}
