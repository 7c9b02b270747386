package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhakawear/storefront-api/internal/domain/user"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// Register creates a customer account and returns a session token.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.domainError(c, err)
		return
	}
	token, err := h.tokens.Issue(u)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{Token: token, User: toUserResponse(u)})
}

// Login authenticates an account and returns a session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.domainError(c, err)
		return
	}
	token, err := h.tokens.Issue(u)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: token, User: toUserResponse(u)})
}
