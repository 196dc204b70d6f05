package handlers

import (
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/classtrack/internal/api/middleware"
	"github.com/felixgeelhaar/classtrack/internal/api/respond"
	"github.com/felixgeelhaar/classtrack/internal/auth"
	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/felixgeelhaar/classtrack/internal/session"
)

// tokenPrefixLen is how much of a session token is shown when listing sessions
const tokenPrefixLen = 8

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *auth.Service
	sessions    *session.Manager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Program   string     `json:"program"`
	YearLevel flexString `json:"yearLevel"`
}

// LoginRequest is the request body for login. Username may also hold an
// email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the response for user data
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Program   string `json:"program"`
	YearLevel string `json:"year_level"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SessionResponse describes a session token without revealing it
type SessionResponse struct {
	TokenPrefix string `json:"token_prefix"`
	IPAddress   string `json:"ip_address"`
	UserAgent   string `json:"user_agent"`
	CreatedAt   string `json:"created_at"`
	ExpiresAt   string `json:"expires_at"`
	Current     bool   `json:"current"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Program:   u.Program,
		YearLevel: u.YearLevel,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.authService.Register(r.Context(), auth.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Program:   req.Program,
		YearLevel: string(req.YearLevel),
	})
	if err != nil {
		respond.DomainError(w, r, err, "Registration failed")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Registration successful",
	})
}

// Login authenticates the user, issues a session token and establishes the
// interactive session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), auth.LoginRequest{
		Login:     req.Username,
		Password:  req.Password,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respond.DomainError(w, r, err, "Login failed")
		return
	}

	user := result.User
	if _, err := h.sessions.Establish(w, r, &domain.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		Source:      domain.SourceInteractive,
	}); err != nil {
		respond.Internal(w, r, "Login failed", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"user":    toUserResponse(user),
		"token":   result.Token,
	})
}

// Logout destroys the interactive session and revokes every session token
// of the user
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("failed to destroy interactive session",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}

	if err := h.authService.Logout(r.Context(), id); err != nil {
		respond.DomainError(w, r, err, "Logout failed")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logout successful",
	})
}

// Check reports whether the request is authenticated
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	user, err := h.authService.CheckAuth(r.Context(), id)
	if err != nil {
		respond.DomainError(w, r, err, "Authentication check failed")
		return
	}

	if user == nil {
		if id != nil && id.Source == domain.SourceInteractive {
			if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
				slog.Warn("failed to destroy stale session",
					"error", err,
					"user_id", id.UserID,
					"request_id", middleware.GetRequestID(r.Context()),
				)
			}
		}
		respond.JSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"authenticated": false,
		})
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"authenticated": true,
		"user":          toUserResponse(user),
	})
}

// Profile returns the current user's profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Profile(r.Context(), id)
	if err != nil {
		respond.DomainError(w, r, err, "Failed to load profile")
		return
	}

	resp := toUserResponse(user)
	resp.CreatedAt = formatTime(user.CreatedAt)
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    resp,
	})
}

// Sessions lists the current user's unexpired session tokens
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	sessions, err := h.authService.ListSessions(r.Context(), id)
	if err != nil {
		respond.DomainError(w, r, err, "Failed to list sessions")
		return
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		prefix := s.Token
		if len(prefix) > tokenPrefixLen {
			prefix = prefix[:tokenPrefixLen]
		}
		response = append(response, SessionResponse{
			TokenPrefix: prefix,
			IPAddress:   s.IPAddress,
			UserAgent:   s.UserAgent,
			CreatedAt:   formatTime(s.CreatedAt),
			ExpiresAt:   formatTime(s.ExpiresAt),
			Current:     id.Source == domain.SourceToken && id.SessionID == s.Token,
		})
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"sessions": response,
	})
}
