package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"techstore/internal/users"
	"techstore/middleware"
	"techstore/pkg/logkey"
)

type registerRequest struct {
	Username        string `json:"username" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type authResponse struct {
	User         users.User `json:"user"`
	SessionToken string     `json:"sessionToken"`
}

// Register creates an account and logs it in. Uniqueness failures answer 400
// with the specific field; everything password-related is hashed before it
// reaches the store.
func (h *Handler) Register(c *gin.Context) {
	traceID := traceID(c)

	var req registerRequest
	if !bindJSON(c, traceID, &req) {
		return
	}
	if !h.validateRequest(c, traceID, req) {
		return
	}
	if req.Password != req.ConfirmPassword {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Passwords don't match"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.u.GetUserByEmail(ctx, req.Email); err == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "User with this email already exists"})
		return
	}
	if _, err := h.u.GetUserByUsername(ctx, req.Username); err == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Username already taken"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("error hashing password", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error creating account"})
		return
	}

	user, err := h.u.CreateUser(ctx, users.NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, users.ErrAlreadyExists) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}
		slog.Error("error creating user", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error creating account"})
		return
	}

	session, err := h.s.CreateSession(ctx, user.ID, h.sessionTTL)
	if err != nil {
		slog.Error("error creating session", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error creating account"})
		return
	}

	slog.Info("user registered", slog.String(logkey.TraceID, traceID), slog.String(logkey.UserID, user.ID))
	c.JSON(http.StatusOK, authResponse{User: user, SessionToken: session.Token})
}

// Login authenticates by email and password. The failure message never
// reveals whether the email exists.
func (h *Handler) Login(c *gin.Context) {
	traceID := traceID(c)

	var req loginRequest
	if !bindJSON(c, traceID, &req) {
		return
	}
	if !h.validateRequest(c, traceID, req) {
		return
	}

	ctx := c.Request.Context()
	user, err := h.u.GetUserByEmail(ctx, req.Email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	session, err := h.s.CreateSession(ctx, user.ID, h.sessionTTL)
	if err != nil {
		slog.Error("error creating session", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error logging in"})
		return
	}

	slog.Info("user logged in", slog.String(logkey.TraceID, traceID), slog.String(logkey.UserID, user.ID))
	c.JSON(http.StatusOK, authResponse{User: user, SessionToken: session.Token})
}

// Logout revokes the session named in the body, falling back to the bearer
// header. Succeeds whether or not a session existed.
func (h *Handler) Logout(c *gin.Context) {
	traceID := traceID(c)

	var req struct {
		SessionToken string `json:"sessionToken"`
	}
	// Body is optional; a bare request with only the bearer header is fine.
	_ = c.ShouldBindJSON(&req)
	token := req.SessionToken
	if token == "" {
		token, _ = middleware.BearerToken(c)
	}

	if token != "" {
		if _, err := h.s.DestroySession(c.Request.Context(), token); err != nil {
			slog.Error("error destroying session", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error logging out"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, user)
}
