package auth

import (
	"encoding/json"
	"net/http"

	"github.com/HerbHall/fleetpulse/internal/server"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service holds the configured operator credentials and token service.
type Service struct {
	tokens       *TokenService
	username     string
	passwordHash string // bcrypt hash; empty disables authentication
	logger       *zap.Logger
}

// NewService creates the auth service. passwordHash is the bcrypt hash of the
// operator password; when empty, Enabled reports false and the server should
// run without the auth middleware.
func NewService(tokens *TokenService, username, passwordHash string, logger *zap.Logger) *Service {
	return &Service{
		tokens:       tokens,
		username:     username,
		passwordHash: passwordHash,
		logger:       logger,
	}
}

// Enabled reports whether operator credentials are configured.
func (s *Service) Enabled() bool {
	return s.passwordHash != ""
}

// RegisterRoutes registers auth routes on the server mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password"`
}

// LoginResponse is the response for a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in" example:"900"`
}

// handleLogin verifies the operator credentials and issues an access token.
//
//	@Summary		Operator login
//	@Description	Verifies operator credentials and returns a JWT access token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	server.Problem
//	@Router			/auth/login [post]
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}

	if req.Username != s.username ||
		bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(req.Password)) != nil {
		s.logger.Warn("failed login attempt", zap.String("username", req.Username))
		server.Unauthorized(w, "invalid credentials", r.URL.Path)
		return
	}

	token, err := s.tokens.IssueAccessToken(req.Username)
	if err != nil {
		s.logger.Error("issue access token", zap.Error(err))
		server.InternalError(w, "failed to issue token", r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.tokens.AccessTokenTTL().Seconds()),
	})
}

// ValidateToken exposes token validation for the WebSocket handler, which
// cannot use the HTTP middleware.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}
