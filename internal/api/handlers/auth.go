package handlers

import (
	"net/http"

	"social-service/internal/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *auth.AuthService
}

func NewAuthHandler(authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body auth.RegisterRequest true "Registration data"
// @Success 201 {object} models.PublicUser
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user, err := h.auth.Register(req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.Public())
}

// Login godoc
// @Summary Log in and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.LoginResponse
// @Failure 403 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
