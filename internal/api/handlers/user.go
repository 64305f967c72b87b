package handlers

import (
	"net/http"

	"social-service/internal/adapters/database"
	"social-service/internal/api/middleware"
	"social-service/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	profile  *service.ProfileService
	presence *service.PresenceService
	media    *database.MediaStore
}

func NewUserHandler(profile *service.ProfileService, presence *service.PresenceService, media *database.MediaStore) *UserHandler {
	return &UserHandler{profile: profile, presence: presence, media: media}
}

// Me returns the caller's own profile, including private fields that
// PublicUser views omit.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.profile.Get(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.profile.Get(userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *UserHandler) All(c *gin.Context) {
	users, err := h.profile.List()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	results, err := h.profile.Search(query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Status reports whether one user is currently online.
func (h *UserHandler) Status(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	online, err := h.presence.IsOnline(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "online": online})
}

type updateNameRequest struct {
	Username string `json:"username" binding:"required"`
}

// UpdateName godoc
// @Summary Change the caller's display name
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body updateNameRequest true "New username"
// @Success 200 {object} models.PublicUser
// @Failure 400 {object} map[string]string
// @Router /user/name [put]
func (h *UserHandler) UpdateName(c *gin.Context) {
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user, err := h.profile.UpdateName(middleware.UserID(c), req.Username)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

type updateBioRequest struct {
	Bio string `json:"bio"`
}

func (h *UserHandler) UpdateBio(c *gin.Context) {
	var req updateBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user, err := h.profile.UpdateBio(middleware.UserID(c), req.Bio)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.profile.ChangePassword(middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// UploadAvatar godoc
// @Summary Upload a new profile picture
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} models.PublicUser
// @Failure 400 {object} map[string]string
// @Router /user/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
		return
	}

	url, _, err := h.media.Upload(c.Request.Context(), "avatars", file)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media upload failed"})
		return
	}

	user, err := h.profile.SetProfilePic(middleware.UserID(c), url)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
