package httpserver

import (
	"net/http"

	profilesvc "campus-food-ordering/internal/service/profile"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	// Identifier is a student id or an email address.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *handlers) signup(c *gin.Context) {
	var in profilesvc.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	p, err := h.deps.ProfileSvc.Signup(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "signup", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	p, token, err := h.deps.ProfileSvc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   h.deps.ProfileSvc.AccessTTLSeconds(),
		"profile":      p,
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.ProfileSvc.Logout(c.Request.Context(), currentToken(c)); err != nil {
		h.writeError(c, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) resetPassword(c *gin.Context) {
	var in profilesvc.ResetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.deps.ProfileSvc.ResetPassword(c.Request.Context(), in); err != nil {
		h.writeError(c, "reset password", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentProfile(c))
}
