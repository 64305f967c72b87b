package service

import (
	"sync"
	"testing"

	"social-service/internal/models"
	"social-service/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequestSelf(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	_, err := svc.SendRequest(1, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSendRequestDuplicate(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	_, err := svc.SendRequest(1, 2)
	require.NoError(t, err)

	_, err = svc.SendRequest(1, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// Reverse direction counts as the same pair.
	_, err = svc.SendRequest(2, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestSendRequestConcurrentBothDirections(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.SendRequest(1, 2)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.SendRequest(2, 1)
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one direction should win")
}

func TestAcceptOnlyRecipient(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	req, err := svc.SendRequest(1, 2)
	require.NoError(t, err)

	_, err = svc.Accept(req.ID, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	accepted, err := svc.Accept(req.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.FriendStatusAccepted, accepted.Status)
}

func TestAcceptMakesBothFriends(t *testing.T) {
	repo := newFakeFriendRepo()
	repo.addUser(1, "alice")
	repo.addUser(2, "bob")
	svc := NewFriendService(repo)

	req, err := svc.SendRequest(1, 2)
	require.NoError(t, err)
	_, err = svc.Accept(req.ID, 2)
	require.NoError(t, err)

	friendsOf1, err := svc.ListFriends(1)
	require.NoError(t, err)
	require.Len(t, friendsOf1, 1)
	assert.Equal(t, uint(2), friendsOf1[0].ID)

	friendsOf2, err := svc.ListFriends(2)
	require.NoError(t, err)
	require.Len(t, friendsOf2, 1)
	assert.Equal(t, uint(1), friendsOf2[0].ID)
}

func TestRejectByEitherParty(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	// Recipient declines.
	req, err := svc.SendRequest(1, 2)
	require.NoError(t, err)
	rejected, err := svc.Reject(req.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.FriendStatusRejected, rejected.Status)

	// Sender retracts. The rejected edge is inactive, so a new
	// request may be created.
	req, err = svc.SendRequest(1, 2)
	require.NoError(t, err)
	_, err = svc.Reject(req.ID, 1)
	require.NoError(t, err)

	// A stranger may do neither.
	req, err = svc.SendRequest(1, 2)
	require.NoError(t, err)
	_, err = svc.Reject(req.ID, 3)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestResolveNotPending(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	req, err := svc.SendRequest(1, 2)
	require.NoError(t, err)
	_, err = svc.Accept(req.ID, 2)
	require.NoError(t, err)

	_, err = svc.Accept(req.ID, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	_, err = svc.Reject(req.ID, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestResolveUnknownRequest(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	_, err := svc.Accept(99, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestRemoveFriend(t *testing.T) {
	repo := newFakeFriendRepo()
	repo.addUser(1, "alice")
	repo.addUser(2, "bob")
	svc := NewFriendService(repo)

	req, err := svc.SendRequest(1, 2)
	require.NoError(t, err)
	_, err = svc.Accept(req.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(2, 1))

	friends, err := svc.ListFriends(1)
	require.NoError(t, err)
	assert.Empty(t, friends)

	err = svc.Remove(2, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestRemovePendingIsNotFound(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	_, err := svc.SendRequest(1, 2)
	require.NoError(t, err)

	// Remove only acts on accepted edges.
	err = svc.Remove(1, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestIncomingOutgoing(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	_, err := svc.SendRequest(1, 2)
	require.NoError(t, err)
	_, err = svc.SendRequest(3, 2)
	require.NoError(t, err)

	incoming, err := svc.ListIncoming(2)
	require.NoError(t, err)
	assert.Len(t, incoming, 2)

	outgoing, err := svc.ListOutgoing(1)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, uint(2), outgoing[0].ToID)
}

func TestAreFriends(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	req, err := svc.SendRequest(1, 2)
	require.NoError(t, err)

	// Pending is not friendship.
	ok, err := svc.AreFriends(1, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Accept(req.ID, 2)
	require.NoError(t, err)

	for _, pair := range [][2]uint{{1, 2}, {2, 1}} {
		ok, err = svc.AreFriends(pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err = svc.AreFriends(1, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPairLocksReleased(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	var wg sync.WaitGroup
	for i := uint(0); i < 50; i++ {
		wg.Add(1)
		go func(i uint) {
			defer wg.Done()
			_, _ = svc.SendRequest(100+i, 200+i)
		}(i)
	}
	wg.Wait()

	// The lock table holds only in-flight pairs; once every mutation
	// returns it must be empty again.
	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.pairLocks)
}

func TestFriendIDs(t *testing.T) {
	svc := NewFriendService(newFakeFriendRepo())

	req, err := svc.SendRequest(1, 2)
	require.NoError(t, err)
	_, err = svc.Accept(req.ID, 2)
	require.NoError(t, err)

	req, err = svc.SendRequest(3, 1)
	require.NoError(t, err)
	_, err = svc.Accept(req.ID, 1)
	require.NoError(t, err)

	// Pending edges do not count.
	_, err = svc.SendRequest(1, 4)
	require.NoError(t, err)

	ids, err := svc.FriendIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3}, ids)
}
