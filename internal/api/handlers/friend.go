package handlers

import (
	"net/http"

	"social-service/internal/api/middleware"
	"social-service/internal/service"
	"social-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	friends  *service.FriendService
	presence *service.PresenceService
	hub      *websocket.Hub
}

func NewFriendHandler(friends *service.FriendService, presence *service.PresenceService, hub *websocket.Hub) *FriendHandler {
	return &FriendHandler{friends: friends, presence: presence, hub: hub}
}

// SendRequest godoc
// @Summary Send a friend request
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Recipient user ID"
// @Success 200 {object} models.FriendRequest
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /friends/add/{userId} [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	actor := middleware.UserID(c)
	target, ok := parseID(c, "userId")
	if !ok {
		return
	}

	req, err := h.friends.SendRequest(actor, target)
	if err != nil {
		fail(c, err)
		return
	}

	// Live notification is best-effort; the request row is durable.
	h.hub.Deliver(target, websocket.NewFriendRequestEvent(req))

	c.JSON(http.StatusOK, req)
}

// Accept godoc
// @Summary Accept a pending friend request
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param requestId path int true "Friend request ID"
// @Success 200 {object} models.FriendRequest
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /friends/accept/{requestId} [post]
func (h *FriendHandler) Accept(c *gin.Context) {
	actor := middleware.UserID(c)
	requestID, ok := parseID(c, "requestId")
	if !ok {
		return
	}

	req, err := h.friends.Accept(requestID, actor)
	if err != nil {
		fail(c, err)
		return
	}

	h.hub.Deliver(req.FromID, websocket.NewFriendAcceptEvent(req))

	c.JSON(http.StatusOK, req)
}

func (h *FriendHandler) Reject(c *gin.Context) {
	actor := middleware.UserID(c)
	requestID, ok := parseID(c, "requestId")
	if !ok {
		return
	}

	req, err := h.friends.Reject(requestID, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

func (h *FriendHandler) Remove(c *gin.Context) {
	actor := middleware.UserID(c)
	target, ok := parseID(c, "userId")
	if !ok {
		return
	}

	if err := h.friends.Remove(actor, target); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
}

func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.friends.ListFriends(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

func (h *FriendHandler) Incoming(c *gin.Context) {
	reqs, err := h.friends.ListIncoming(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *FriendHandler) Outgoing(c *gin.Context) {
	reqs, err := h.friends.ListOutgoing(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// Online lists the caller's currently online friends.
func (h *FriendHandler) Online(c *gin.Context) {
	ids, err := h.friends.FriendIDs(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	online, err := h.presence.OnlineAmong(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": online})
}
