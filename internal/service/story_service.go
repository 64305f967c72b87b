package service

import (
	"errors"
	"time"

	"social-service/internal/models"
	"social-service/internal/repository"
	"social-service/internal/websocket"
	"social-service/pkg/apperrors"

	"gorm.io/gorm"
)

// StoryGroup is one owner's active stories, newest first.
type StoryGroup struct {
	Owner   models.PublicUser `json:"owner"`
	Stories []models.Story    `json:"stories"`
}

// StoryService handles ephemeral stories. Visibility follows the
// friendship graph and the 24h window; expiry is a query-time filter
// backed by a periodic eviction job.
type StoryService struct {
	repo    repository.StoryRepository
	friends *FriendService
	hub     Deliverer

	// now is swappable for tests of the expiry boundary.
	now func() time.Time
}

func NewStoryService(repo repository.StoryRepository, friends *FriendService, hub Deliverer) *StoryService {
	return &StoryService{
		repo:    repo,
		friends: friends,
		hub:     hub,
		now:     time.Now,
	}
}

// Create persists a story and notifies the owner's friends' rooms so
// open clients can surface it without a refetch.
func (s *StoryService) Create(owner uint, mediaURL, mediaType string) (*models.Story, error) {
	if mediaURL == "" {
		return nil, apperrors.Validation("story media is required")
	}

	story := &models.Story{
		OwnerID:   owner,
		MediaURL:  mediaURL,
		MediaType: mediaType,
	}
	if err := s.repo.Create(story); err != nil {
		return nil, apperrors.Unavailable(err, "failed to create story")
	}

	friendIDs, err := s.friends.FriendIDs(owner)
	if err == nil {
		event := websocket.NewStoryEvent(story)
		for _, id := range friendIDs {
			s.hub.Deliver(id, event)
		}
	}

	return story, nil
}

// VisibleStories returns stories owned by the viewer or a friend,
// inside the 24h window, grouped by owner. Groups appear in order of
// their newest story; each group is internally newest first.
func (s *StoryService) VisibleStories(viewer uint) ([]StoryGroup, error) {
	friendIDs, err := s.friends.FriendIDs(viewer)
	if err != nil {
		return nil, err
	}

	ownerIDs := append(friendIDs, viewer)
	cutoff := s.now().Add(-models.StoryTTL)
	stories, err := s.repo.ListActiveByOwners(ownerIDs, cutoff)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load stories")
	}

	groups := make([]StoryGroup, 0)
	index := make(map[uint]int)
	for _, story := range stories {
		i, ok := index[story.OwnerID]
		if !ok {
			i = len(groups)
			index[story.OwnerID] = i
			groups = append(groups, StoryGroup{Owner: story.Owner.Public()})
		}
		groups[i].Stories = append(groups[i].Stories, story)
	}
	return groups, nil
}

// RecordView idempotently adds the viewer to the story's viewer set.
// Only viewers who can see the story (the owner or a friend) count.
func (s *StoryService) RecordView(storyID, viewer uint) error {
	story, err := s.load(storyID)
	if err != nil {
		return err
	}

	if story.OwnerID != viewer {
		friends, err := s.friends.AreFriends(story.OwnerID, viewer)
		if err != nil {
			return err
		}
		if !friends {
			return apperrors.Forbidden("story is not visible to you")
		}
	}

	if err := s.repo.AddViewer(storyID, viewer); err != nil {
		return apperrors.Unavailable(err, "failed to record view")
	}
	return nil
}

// Delete removes a story. Owner only.
func (s *StoryService) Delete(storyID, actingUser uint) error {
	story, err := s.load(storyID)
	if err != nil {
		return err
	}
	if story.OwnerID != actingUser {
		return apperrors.Forbidden("only the owner can delete a story")
	}
	if err := s.repo.Delete(storyID); err != nil {
		return apperrors.Unavailable(err, "failed to delete story")
	}
	return nil
}

// EvictExpired removes stories past their window. Run periodically;
// visibility does not depend on it thanks to the query-time filter.
func (s *StoryService) EvictExpired() (int64, error) {
	cutoff := s.now().Add(-models.StoryTTL)
	removed, err := s.repo.DeleteExpired(cutoff)
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to evict stories")
	}
	return removed, nil
}

func (s *StoryService) load(storyID uint) (*models.Story, error) {
	story, err := s.repo.FindByID(storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("story not found")
		}
		return nil, apperrors.Unavailable(err, "failed to load story")
	}
	return story, nil
}
