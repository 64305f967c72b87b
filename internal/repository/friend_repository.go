package repository

import (
	"errors"

	"social-service/internal/models"

	"gorm.io/gorm"
)

// ErrActiveEdgeExists is returned by CreateRequest when a pending or
// accepted edge already joins the pair in either direction.
var ErrActiveEdgeExists = errors.New("active friend edge already exists")

type FriendRepository interface {
	// CreateRequest inserts a pending edge from->to unless an active
	// edge already exists between the pair. The existence check and
	// the insert run in one transaction.
	CreateRequest(req *models.FriendRequest) error
	FindRequestByID(id uint) (*models.FriendRequest, error)
	// UpdateStatusIfPending transitions the request out of pending.
	// Returns gorm.ErrRecordNotFound if the row is absent or no
	// longer pending.
	UpdateStatusIfPending(id uint, status models.FriendStatus) error
	// DeleteAccepted removes the accepted edge between the pair, either
	// direction. Returns gorm.ErrRecordNotFound if none exists.
	DeleteAccepted(userA, userB uint) error
	ListFriends(userID uint) ([]models.User, error)
	ListIncoming(userID uint) ([]models.FriendRequest, error)
	ListOutgoing(userID uint) ([]models.FriendRequest, error)
	AreFriends(userA, userB uint) (bool, error)
	FriendIDs(userID uint) ([]uint, error)
}

type friendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) CreateRequest(req *models.FriendRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.FriendRequest{}).
			Where("((from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)) AND status IN ?",
				req.FromID, req.ToID, req.ToID, req.FromID,
				[]models.FriendStatus{models.FriendStatusPending, models.FriendStatusAccepted}).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrActiveEdgeExists
		}
		return tx.Create(req).Error
	})
}

func (r *friendRepository) FindRequestByID(id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *friendRepository) UpdateStatusIfPending(id uint, status models.FriendStatus) error {
	res := r.db.Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, models.FriendStatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *friendRepository) DeleteAccepted(userA, userB uint) error {
	res := r.db.
		Where("((from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)) AND status = ?",
			userA, userB, userB, userA, models.FriendStatusAccepted).
		Delete(&models.FriendRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *friendRepository) ListFriends(userID uint) ([]models.User, error) {
	var edges []models.FriendRequest
	err := r.db.
		Preload("From").
		Preload("To").
		Where("(from_id = ? OR to_id = ?) AND status = ?",
			userID, userID, models.FriendStatusAccepted).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	friends := make([]models.User, 0, len(edges))
	for _, e := range edges {
		if e.FromID == userID {
			friends = append(friends, e.To)
		} else {
			friends = append(friends, e.From)
		}
	}
	return friends, nil
}

func (r *friendRepository) ListIncoming(userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.
		Preload("From").
		Where("to_id = ? AND status = ?", userID, models.FriendStatusPending).
		Find(&reqs).Error
	return reqs, err
}

func (r *friendRepository) ListOutgoing(userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.
		Preload("To").
		Where("from_id = ? AND status = ?", userID, models.FriendStatusPending).
		Find(&reqs).Error
	return reqs, err
}

func (r *friendRepository) AreFriends(userA, userB uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.FriendRequest{}).
		Where("((from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)) AND status = ?",
			userA, userB, userB, userA, models.FriendStatusAccepted).
		Count(&count).Error
	return count > 0, err
}

func (r *friendRepository) FriendIDs(userID uint) ([]uint, error) {
	var edges []models.FriendRequest
	err := r.db.
		Select("from_id", "to_id").
		Where("(from_id = ? OR to_id = ?) AND status = ?",
			userID, userID, models.FriendStatusAccepted).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		if e.FromID == userID {
			ids = append(ids, e.ToID)
		} else {
			ids = append(ids, e.FromID)
		}
	}
	return ids, nil
}
