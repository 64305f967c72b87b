package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"social-service/internal/models"
	"social-service/internal/repository"
	"social-service/internal/websocket"

	"gorm.io/gorm"
)

// recordingHub captures deliveries per room instead of pushing to
// real connections.
type recordingHub struct {
	mu         sync.Mutex
	delivered  map[uint][]*websocket.Event
	broadcasts []*websocket.Event
}

func newRecordingHub() *recordingHub {
	return &recordingHub{delivered: make(map[uint][]*websocket.Event)}
}

func (h *recordingHub) Deliver(userID uint, event *websocket.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delivered[userID] = append(h.delivered[userID], event)
}

func (h *recordingHub) Broadcast(event *websocket.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, event)
}

func (h *recordingHub) deliveredTo(userID uint) []*websocket.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*websocket.Event(nil), h.delivered[userID]...)
}

func (h *recordingHub) broadcastCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.broadcasts)
}

type fakeFriendRepo struct {
	mu     sync.Mutex
	nextID uint
	edges  map[uint]*models.FriendRequest
	users  map[uint]models.User
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{
		edges: make(map[uint]*models.FriendRequest),
		users: make(map[uint]models.User),
	}
}

func (r *fakeFriendRepo) addUser(id uint, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = models.User{ID: id, Username: username}
}

func (r *fakeFriendRepo) CreateRequest(req *models.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.edges {
		samePair := (e.FromID == req.FromID && e.ToID == req.ToID) ||
			(e.FromID == req.ToID && e.ToID == req.FromID)
		if samePair && e.Status.Active() {
			return repository.ErrActiveEdgeExists
		}
	}

	r.nextID++
	req.ID = r.nextID
	req.CreatedAt = time.Now()
	copied := *req
	r.edges[req.ID] = &copied
	return nil
}

func (r *fakeFriendRepo) FindRequestByID(id uint) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.edges[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeFriendRepo) UpdateStatusIfPending(id uint, status models.FriendStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.edges[id]
	if !ok || e.Status != models.FriendStatusPending {
		return gorm.ErrRecordNotFound
	}
	e.Status = status
	return nil
}

func (r *fakeFriendRepo) DeleteAccepted(userA, userB uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.edges {
		samePair := (e.FromID == userA && e.ToID == userB) ||
			(e.FromID == userB && e.ToID == userA)
		if samePair && e.Status == models.FriendStatusAccepted {
			delete(r.edges, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeFriendRepo) ListFriends(userID uint) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var friends []models.User
	for _, e := range r.edges {
		if e.Status != models.FriendStatusAccepted {
			continue
		}
		switch userID {
		case e.FromID:
			friends = append(friends, r.users[e.ToID])
		case e.ToID:
			friends = append(friends, r.users[e.FromID])
		}
	}
	return friends, nil
}

func (r *fakeFriendRepo) ListIncoming(userID uint) ([]models.FriendRequest, error) {
	return r.list(func(e *models.FriendRequest) bool {
		return e.ToID == userID && e.Status == models.FriendStatusPending
	})
}

func (r *fakeFriendRepo) ListOutgoing(userID uint) ([]models.FriendRequest, error) {
	return r.list(func(e *models.FriendRequest) bool {
		return e.FromID == userID && e.Status == models.FriendStatusPending
	})
}

func (r *fakeFriendRepo) list(keep func(*models.FriendRequest) bool) ([]models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reqs []models.FriendRequest
	for _, e := range r.edges {
		if keep(e) {
			reqs = append(reqs, *e)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs, nil
}

func (r *fakeFriendRepo) AreFriends(userA, userB uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		samePair := (e.FromID == userA && e.ToID == userB) ||
			(e.FromID == userB && e.ToID == userA)
		if samePair && e.Status == models.FriendStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFriendRepo) FriendIDs(userID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, e := range r.edges {
		if e.Status != models.FriendStatusAccepted {
			continue
		}
		switch userID {
		case e.FromID:
			ids = append(ids, e.ToID)
		case e.ToID:
			ids = append(ids, e.FromID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	return err == nil, nil
}

func (r *fakeUserRepo) SearchByUsername(query string, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []models.User
	for _, u := range r.users {
		if len(users) == limit {
			break
		}
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) ListAll() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type fakeMessageRepo struct {
	mu     sync.Mutex
	nextID uint
	msgs   map[uint]*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[uint]*models.Message)}
}

func (r *fakeMessageRepo) Create(msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = time.Now()
	copied := *msg
	r.msgs[msg.ID] = &copied
	return nil
}

func (r *fakeMessageRepo) FindByID(id uint) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMessageRepo) History(userA, userB uint) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var msgs []models.Message
	for _, m := range r.msgs {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			msgs = append(msgs, *m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return msgs, nil
}

func (r *fakeMessageRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.msgs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.msgs, id)
	return nil
}

type fakePostRepo struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]*models.Post
	likes  map[uint]map[uint]bool
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: make(map[uint]*models.Post),
		likes: make(map[uint]map[uint]bool),
	}
}

func (r *fakePostRepo) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	post.CreatedAt = time.Now()
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) FindByID(id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(id)
}

// snapshot materializes likes onto the copy the way the real
// repository's preloads do. Callers hold the lock.
func (r *fakePostRepo) snapshot(id uint) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	copied.Likes = nil
	for userID := range r.likes[id] {
		copied.Likes = append(copied.Likes, models.PostLike{PostID: id, UserID: userID})
	}
	copied.Comments = append([]models.Comment(nil), p.Comments...)
	return &copied, nil
}

func (r *fakePostRepo) ListByAuthors(authorIDs []uint) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}
	var posts []models.Post
	for id, p := range r.posts {
		if allowed[p.AuthorID] {
			s, _ := r.snapshot(id)
			posts = append(posts, *s)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

func (r *fakePostRepo) ListAll() ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []models.Post
	for id := range r.posts {
		s, _ := r.snapshot(id)
		posts = append(posts, *s)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

func (r *fakePostRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.posts, id)
	delete(r.likes, id)
	return nil
}

func (r *fakePostRepo) ToggleLike(postID, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[postID]; !ok {
		return false, gorm.ErrRecordNotFound
	}
	if r.likes[postID] == nil {
		r.likes[postID] = make(map[uint]bool)
	}
	if r.likes[postID][userID] {
		delete(r.likes[postID], userID)
		return false, nil
	}
	r.likes[postID][userID] = true
	return true, nil
}

func (r *fakePostRepo) AddComment(comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[comment.PostID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	comment.ID = uint(len(p.Comments) + 1)
	comment.CreatedAt = time.Now()
	p.Comments = append(p.Comments, *comment)
	return nil
}

type fakeStoryRepo struct {
	mu      sync.Mutex
	nextID  uint
	stories map[uint]*models.Story
	views   map[uint]map[uint]bool
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{
		stories: make(map[uint]*models.Story),
		views:   make(map[uint]map[uint]bool),
	}
}

func (r *fakeStoryRepo) Create(story *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	story.ID = r.nextID
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	copied := *story
	r.stories[story.ID] = &copied
	return nil
}

// seed inserts a story with a controlled creation time.
func (r *fakeStoryRepo) seed(owner uint, createdAt time.Time) *models.Story {
	story := &models.Story{OwnerID: owner, MediaURL: "https://cdn.test/s.jpg", CreatedAt: createdAt}
	r.Create(story)
	return story
}

func (r *fakeStoryRepo) FindByID(id uint) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStoryRepo) ListActiveByOwners(ownerIDs []uint, cutoff time.Time) ([]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := make(map[uint]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		allowed[id] = true
	}
	var stories []models.Story
	for _, s := range r.stories {
		if allowed[s.OwnerID] && s.CreatedAt.After(cutoff) {
			copied := *s
			copied.Owner = models.User{ID: s.OwnerID}
			stories = append(stories, copied)
		}
	}
	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.After(stories[j].CreatedAt)
	})
	return stories, nil
}

func (r *fakeStoryRepo) AddViewer(storyID, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.views[storyID] == nil {
		r.views[storyID] = make(map[uint]bool)
	}
	r.views[storyID][userID] = true
	return nil
}

func (r *fakeStoryRepo) viewerCount(storyID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views[storyID])
}

func (r *fakeStoryRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.stories, id)
	delete(r.views, id)
	return nil
}

func (r *fakeStoryRepo) DeleteExpired(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, s := range r.stories {
		if !s.CreatedAt.After(cutoff) {
			delete(r.stories, id)
			delete(r.views, id)
			removed++
		}
	}
	return removed, nil
}
