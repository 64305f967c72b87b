package handlers

import (
	"net/http"

	"social-service/internal/adapters/database"
	"social-service/internal/api/middleware"
	"social-service/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	feed  *service.FeedService
	media *database.MediaStore
}

func NewPostHandler(feed *service.FeedService, media *database.MediaStore) *PostHandler {
	return &PostHandler{feed: feed, media: media}
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param description formData string false "Post text"
// @Param image formData file false "Post media"
// @Success 201 {object} models.Post
// @Failure 400 {object} map[string]string
// @Router /posts/create [post]
func (h *PostHandler) Create(c *gin.Context) {
	description := c.PostForm("description")

	var mediaURL, mediaType string
	if file, err := c.FormFile("image"); err == nil {
		mediaURL, mediaType, err = h.media.Upload(c.Request.Context(), "posts", file)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media upload failed"})
			return
		}
	}

	post, err := h.feed.CreatePost(middleware.UserID(c), description, mediaURL, mediaType)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// Feed returns the caller's posts and their friends' posts, newest
// first.
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.feed.VisiblePosts(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) All(c *gin.Context) {
	posts, err := h.feed.AllPosts()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Mine(c *gin.Context) {
	posts, err := h.feed.PostsByAuthor(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) ByUser(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	posts, err := h.feed.PostsByAuthor(userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Like toggles the caller's like and pushes the updated post to all
// live connections.
func (h *PostHandler) Like(c *gin.Context) {
	postID, ok := parseID(c, "postId")
	if !ok {
		return
	}

	post, err := h.feed.ToggleLike(postID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"likesCount": len(post.Likes)})
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *PostHandler) Comment(c *gin.Context) {
	postID, ok := parseID(c, "postId")
	if !ok {
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment required"})
		return
	}

	post, err := h.feed.AddComment(postID, middleware.UserID(c), req.Text)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, post.Comments)
}

func (h *PostHandler) Delete(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.feed.DeletePost(postID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
