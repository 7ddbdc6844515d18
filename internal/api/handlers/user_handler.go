package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gorider/gorider-api/internal/api/dto"
	"github.com/gorider/gorider-api/internal/api/middleware"
	"github.com/gorider/gorider-api/internal/domain/user"
	apperrors "github.com/gorider/gorider-api/pkg/errors"
	"github.com/gorider/gorider-api/pkg/logger"
)

const msgUserExists = "User already exists"

// CreateUser handles POST /users. A known email is not an error: the
// existing-user message is returned and nothing is written.
func (h *Handlers) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ErrInvalidBody)
		return
	}

	ctx := c.Request.Context()
	_, err := h.Users.GetByEmail(ctx, req.Email)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": msgUserExists})
		return
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		h.respondError(c, err)
		return
	}

	u := req.ToUser()
	if err := h.Users.Create(ctx, u); err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, user.ErrUserExists) {
			c.JSON(http.StatusOK, gin.H{"message": msgUserExists})
			return
		}
		h.respondError(c, err)
		return
	}

	h.Logger.Info("User created", logger.String("email", u.Email))
	c.JSON(http.StatusCreated, u)
}

// ListUsers handles GET /users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserRole handles PATCH /user/role/:id
func (h *Handlers) UpdateUserRole(c *gin.Context) {
	id, ok := h.objectID(c)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Role.IsValid() {
		h.respondError(c, apperrors.BadRequest("Invalid role", err))
		return
	}

	modified, err := h.Users.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if modified == 1 {
		h.Logger.Info("User role updated",
			logger.String("id", id.Hex()),
			logger.String("role", string(req.Role)),
		)
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: modified == 1})
}

// IsAdmin handles GET /users/admin/:email. Callers may only ask about
// themselves; anyone else gets {admin: false}.
func (h *Handlers) IsAdmin(c *gin.Context) {
	email := c.Param("email")
	if c.GetString(middleware.ContextEmail) != email {
		c.JSON(http.StatusOK, gin.H{"admin": false})
		return
	}

	u, err := h.Users.GetByEmail(c.Request.Context(), email)
	if errors.Is(err, user.ErrUserNotFound) {
		c.JSON(http.StatusOK, gin.H{"admin": false})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": u.IsAdmin()})
}

// IssueToken handles POST /jwt
func (h *Handlers) IssueToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ErrInvalidBody)
		return
	}

	token, err := h.Tokens.Generate(req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
