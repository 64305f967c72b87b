package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"social-service/internal/models"
	"social-service/internal/repository"
	"social-service/internal/websocket"
	"social-service/pkg/apperrors"

	"gorm.io/gorm"
)

// FeedService derives what a viewer may see from the friendship
// graph and handles post mutations. Like and comment changes are
// broadcast to all live connections and mirrored to the event sink.
type FeedService struct {
	posts   repository.PostRepository
	friends *FriendService
	hub     Deliverer
	sink    EventSink
}

func NewFeedService(posts repository.PostRepository, friends *FriendService, hub Deliverer, sink EventSink) *FeedService {
	return &FeedService{posts: posts, friends: friends, hub: hub, sink: sink}
}

// VisiblePosts returns the viewer's posts unioned with their
// friends' posts, newest first.
func (s *FeedService) VisiblePosts(viewer uint) ([]models.Post, error) {
	friendIDs, err := s.friends.FriendIDs(viewer)
	if err != nil {
		return nil, err
	}

	authorIDs := append(friendIDs, viewer)
	posts, err := s.posts.ListByAuthors(authorIDs)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load feed")
	}
	return posts, nil
}

// PostsByAuthor lists one user's posts, newest first.
func (s *FeedService) PostsByAuthor(authorID uint) ([]models.Post, error) {
	posts, err := s.posts.ListByAuthors([]uint{authorID})
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load posts")
	}
	return posts, nil
}

// AllPosts lists every post, newest first (the public explore view).
func (s *FeedService) AllPosts() ([]models.Post, error) {
	posts, err := s.posts.ListAll()
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to load posts")
	}
	return posts, nil
}

// CreatePost persists a new post. Either description or media must
// be present.
func (s *FeedService) CreatePost(author uint, description, mediaURL, mediaType string) (*models.Post, error) {
	if strings.TrimSpace(description) == "" && mediaURL == "" {
		return nil, apperrors.Validation("post needs a description or media")
	}

	post := &models.Post{
		AuthorID:    author,
		Description: description,
		MediaURL:    mediaURL,
		MediaType:   mediaType,
	}
	if err := s.posts.Create(post); err != nil {
		return nil, apperrors.Unavailable(err, "failed to create post")
	}
	return post, nil
}

// ToggleLike flips the actor's like on the post and broadcasts the
// updated post to every live connection.
func (s *FeedService) ToggleLike(postID, actingUser uint) (*models.Post, error) {
	if _, err := s.loadPost(postID); err != nil {
		return nil, err
	}

	if _, err := s.posts.ToggleLike(postID, actingUser); err != nil {
		return nil, apperrors.Unavailable(err, "failed to toggle like")
	}

	post, err := s.loadPost(postID)
	if err != nil {
		return nil, err
	}

	s.broadcastPostUpdate(post)
	return post, nil
}

// AddComment appends a comment and broadcasts the updated post.
func (s *FeedService) AddComment(postID, actingUser uint, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("comment text must not be empty")
	}

	if _, err := s.loadPost(postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: actingUser,
		Text:   text,
	}
	if err := s.posts.AddComment(comment); err != nil {
		return nil, apperrors.Unavailable(err, "failed to add comment")
	}

	post, err := s.loadPost(postID)
	if err != nil {
		return nil, err
	}

	s.broadcastPostUpdate(post)
	return post, nil
}

// DeletePost removes a post. Author only.
func (s *FeedService) DeletePost(postID, actingUser uint) error {
	post, err := s.loadPost(postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actingUser {
		return apperrors.Forbidden("only the author can delete a post")
	}
	if err := s.posts.Delete(postID); err != nil {
		return apperrors.Unavailable(err, "failed to delete post")
	}
	return nil
}

func (s *FeedService) loadPost(postID uint) (*models.Post, error) {
	post, err := s.posts.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, apperrors.Unavailable(err, "failed to load post")
	}
	return post, nil
}

func (s *FeedService) broadcastPostUpdate(post *models.Post) {
	event := websocket.NewPostUpdatedEvent(post)
	s.hub.Broadcast(event)

	if s.sink != nil {
		if err := s.sink.Publish(context.Background(), event); err != nil {
			slog.Error("failed to mirror post update to sink",
				"postID", post.ID, "error", err)
		}
	}
}
