package handlers

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/auth"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/form"
	"ev-dealer-hub/internal/middleware"
	"ev-dealer-hub/internal/models"
	"ev-dealer-hub/internal/store"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the token plus everything the SPA needs to draw its shell.
type LoginResponse struct {
	Token    string            `json:"token"`
	Role     models.Role       `json:"role"`
	Username string            `json:"username"`
	FullName string            `json:"full_name"`
	DealerID *uint             `json:"dealer_id"`
	Menu     []access.MenuItem `json:"menu"`
}

// --- POST: /login ---
func (s *Server) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// 2. Names locked out by repeated failures wait it out
	settings := s.reg.CurrentSettings()
	now := s.reg.Now()
	if until, locked := s.lockout.Locked(input.Username, now); locked {
		wait := until.Sub(now)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": fmt.Sprintf("Too many failed attempts. Try again in %d minutes", int(math.Ceil(wait.Minutes())))})
		return
	}

	// 3. Find User and verify Password (Bcrypt)
	user, ok := s.reg.FindUser(input.Username)
	if !ok || !auth.CheckPassword(user.PasswordHash, input.Password) {
		lockFor := time.Duration(settings.LockoutMinutes) * time.Minute
		if s.lockout.Fail(input.Username, settings.MaxLoginAttempts, lockFor, now) {
			log.Printf("🔒 %s locked out for %s after %d failed logins", input.Username, lockFor, settings.MaxLoginAttempts)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if user.Status != models.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}
	s.lockout.Reset(input.Username)

	// 4. Generate JWT Token, valid for the configured session timeout
	ttl := time.Duration(settings.SessionTimeoutMinutes) * time.Minute
	token, err := s.issuer.GenerateToken(auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		DealerID: user.DealerID,
	}, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// 5. Success! Return Token, Role and the sidebar
	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Role:     user.Role,
		Username: user.Username,
		FullName: user.FullName,
		DealerID: user.DealerID,
		Menu:     access.Menu(user.Role),
	})
}

// --- GET: /api/me ---
func (s *Server) Me(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	user, err := s.reg.Users.Get(sess.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "session": sess})
}

// --- PATCH: /api/me ---
// Every role may edit its own contact details, nothing else.
func (s *Server) UpdateProfile(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	user, err := s.reg.Users.Get(sess.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	input, ok := bindInput(c)
	if !ok {
		return
	}

	// 1. Validate against the profile form; other fields are refused
	draft, err := form.DraftFrom(dealership.ProfileSchema, user)
	if err != nil {
		respondError(c, err)
		return
	}
	draft.Apply(input)
	changes, err := draft.Changes()
	if err != nil {
		respondError(c, err)
		return
	}

	// 2. Save
	next, err := store.Merged(user, changes)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := s.reg.Users.Replace(c.Request.Context(), user.ID, user, next)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --- GET: /api/me/menu ---
func (s *Server) MyMenu(c *gin.Context) {
	c.JSON(http.StatusOK, access.Menu(middleware.CurrentSession(c).Role))
}

type PasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

// --- PUT: /api/me/password ---
func (s *Server) ChangePassword(c *gin.Context) {
	var input PasswordRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be 6 to 72 characters"})
		return
	}

	sess := middleware.CurrentSession(c)
	user, err := s.reg.Users.Get(sess.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, input.CurrentPassword) {
		respondError(c, invalid("user", "current_password", "is incorrect"))
		return
	}
	if msg := s.reg.CurrentSettings().PasswordProblem(input.NewPassword); msg != "" {
		respondError(c, invalid("user", "new_password", msg))
		return
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	if err := s.reg.SetPassword(c.Request.Context(), user.ID, hash); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
