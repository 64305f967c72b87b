package handlers

import (
	"net/http"

	"social-service/internal/adapters/database"
	"social-service/internal/api/middleware"
	"social-service/internal/service"

	"github.com/gin-gonic/gin"
)

type StoryHandler struct {
	stories *service.StoryService
	media   *database.MediaStore
}

func NewStoryHandler(stories *service.StoryService, media *database.MediaStore) *StoryHandler {
	return &StoryHandler{stories: stories, media: media}
}

// Create godoc
// @Summary Create a story
// @Tags stories
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param media formData file true "Story media"
// @Success 201 {object} models.Story
// @Failure 400 {object} map[string]string
// @Router /stories/create [post]
func (h *StoryHandler) Create(c *gin.Context) {
	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media file required"})
		return
	}

	mediaURL, mediaType, err := h.media.Upload(c.Request.Context(), "stories", file)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media upload failed"})
		return
	}

	story, err := h.stories.Create(middleware.UserID(c), mediaURL, mediaType)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, story)
}

// List returns the caller's and their friends' active stories,
// grouped by owner.
func (h *StoryHandler) List(c *gin.Context) {
	groups, err := h.stories.VisibleStories(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *StoryHandler) View(c *gin.Context) {
	storyID, ok := parseID(c, "storyId")
	if !ok {
		return
	}

	if err := h.stories.RecordView(storyID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "view recorded"})
}

func (h *StoryHandler) Delete(c *gin.Context) {
	storyID, ok := parseID(c, "storyId")
	if !ok {
		return
	}

	if err := h.stories.Delete(storyID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "story deleted"})
}
