package service

import (
	"errors"
	"sync"

	"social-service/internal/models"
	"social-service/internal/repository"
	"social-service/pkg/apperrors"

	"gorm.io/gorm"
)

// FriendService owns the friendship request state machine. Mutations
// on the same unordered pair are serialized through a per-pair lock
// so the "at most one active edge" invariant holds under concurrent
// requests from both sides; the repository re-checks it inside a
// transaction as a second line of defense.
type FriendService struct {
	repo repository.FriendRepository

	mu        sync.Mutex
	pairLocks map[[2]uint]*pairLock
}

// pairLock carries a waiter count so the table entry can be dropped
// once the last holder releases; the table stays bounded by the
// number of in-flight mutations, not by every pair ever touched.
type pairLock struct {
	mu   sync.Mutex
	refs int
}

func NewFriendService(repo repository.FriendRepository) *FriendService {
	return &FriendService{
		repo:      repo,
		pairLocks: make(map[[2]uint]*pairLock),
	}
}

func pairKey(a, b uint) [2]uint {
	if a > b {
		a, b = b, a
	}
	return [2]uint{a, b}
}

// lockPair serializes mutations on the unordered pair and returns the
// release func.
func (s *FriendService) lockPair(a, b uint) func() {
	key := pairKey(a, b)
	s.mu.Lock()
	l, ok := s.pairLocks[key]
	if !ok {
		l = &pairLock{}
		s.pairLocks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.pairLocks, key)
		}
		s.mu.Unlock()
	}
}

// SendRequest creates a pending edge from->to. Fails with a
// validation error on self-requests and a conflict when any active
// edge already joins the pair.
func (s *FriendService) SendRequest(from, to uint) (*models.FriendRequest, error) {
	if from == to {
		return nil, apperrors.Validation("cannot add yourself as friend")
	}

	unlock := s.lockPair(from, to)
	defer unlock()

	req := &models.FriendRequest{
		FromID: from,
		ToID:   to,
		Status: models.FriendStatusPending,
	}
	if err := s.repo.CreateRequest(req); err != nil {
		if errors.Is(err, repository.ErrActiveEdgeExists) {
			return nil, apperrors.Conflict("friend request already exists")
		}
		return nil, apperrors.Unavailable(err, "failed to create friend request")
	}
	return req, nil
}

// Accept transitions a pending request to accepted. Only the
// recipient may accept.
func (s *FriendService) Accept(requestID, actingUser uint) (*models.FriendRequest, error) {
	return s.resolve(requestID, actingUser, models.FriendStatusAccepted)
}

// Reject transitions a pending request to rejected. Either party may
// reject: the recipient declines, the sender retracts.
func (s *FriendService) Reject(requestID, actingUser uint) (*models.FriendRequest, error) {
	return s.resolve(requestID, actingUser, models.FriendStatusRejected)
}

func (s *FriendService) resolve(requestID, actingUser uint, status models.FriendStatus) (*models.FriendRequest, error) {
	req, err := s.repo.FindRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("friend request not found")
		}
		return nil, apperrors.Unavailable(err, "failed to load friend request")
	}

	switch status {
	case models.FriendStatusAccepted:
		if req.ToID != actingUser {
			return nil, apperrors.Forbidden("only the recipient can accept a friend request")
		}
	case models.FriendStatusRejected:
		if req.ToID != actingUser && req.FromID != actingUser {
			return nil, apperrors.Forbidden("not a party to this friend request")
		}
	}

	unlock := s.lockPair(req.FromID, req.ToID)
	defer unlock()

	if err := s.repo.UpdateStatusIfPending(requestID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The row exists but already left pending.
			return nil, apperrors.Conflict("friend request is no longer pending")
		}
		return nil, apperrors.Unavailable(err, "failed to update friend request")
	}

	req.Status = status
	return req, nil
}

// Remove deletes the accepted edge between the pair. Valid only from
// the accepted state.
func (s *FriendService) Remove(userA, userB uint) error {
	unlock := s.lockPair(userA, userB)
	defer unlock()

	if err := s.repo.DeleteAccepted(userA, userB); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("friend not found")
		}
		return apperrors.Unavailable(err, "failed to remove friend")
	}
	return nil
}

// ListFriends returns every user joined to userID by an accepted
// edge, either direction.
func (s *FriendService) ListFriends(userID uint) ([]models.PublicUser, error) {
	users, err := s.repo.ListFriends(userID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list friends")
	}

	friends := make([]models.PublicUser, 0, len(users))
	for i := range users {
		friends = append(friends, users[i].Public())
	}
	return friends, nil
}

func (s *FriendService) ListIncoming(userID uint) ([]models.FriendRequest, error) {
	reqs, err := s.repo.ListIncoming(userID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list incoming requests")
	}
	return reqs, nil
}

func (s *FriendService) ListOutgoing(userID uint) ([]models.FriendRequest, error) {
	reqs, err := s.repo.ListOutgoing(userID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list outgoing requests")
	}
	return reqs, nil
}

// AreFriends reports whether an accepted edge joins the pair, either
// direction.
func (s *FriendService) AreFriends(userA, userB uint) (bool, error) {
	ok, err := s.repo.AreFriends(userA, userB)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to check friendship")
	}
	return ok, nil
}

// FriendIDs returns the ids of userID's friends. Used by the feed
// and story visibility filters.
func (s *FriendService) FriendIDs(userID uint) ([]uint, error) {
	ids, err := s.repo.FriendIDs(userID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load friend ids")
	}
	return ids, nil
}
