// Package server implements the cloud map store API: credential auth
// issuing JWTs and a per-user map collection. The CLI's cloud client
// and sync path speak to these endpoints.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mindweave/mindweave/pkg/errors"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, email, password string) (User, error)
	Authenticate(ctx context.Context, email, password string) (User, error)
}

// MapStore persists concept map rows per user.
type MapStore interface {
	List(ctx context.Context, userID string) ([]MapRow, error)
	Insert(ctx context.Context, row MapRow) error
	DeleteByTitle(ctx context.Context, userID, title string) error
	DeleteAll(ctx context.Context, userID string) error
}

// Sessions issues and validates access tokens.
type Sessions interface {
	Issue(ctx context.Context, user User) (string, error)
	Verify(ctx context.Context, token string) (User, error)
	Revoke(ctx context.Context, token string) error
}

// Server is the HTTP API. Construct with New and mount via Handler.
type Server struct {
	users    UserStore
	maps     MapStore
	sessions Sessions
	logger   *log.Logger
	router   chi.Router
}

// New wires the router.
func New(users UserStore, maps MapStore, sessions Sessions, logger *log.Logger) *Server {
	s := &Server{
		users:    users,
		maps:     maps,
		sessions: sessions,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/auth/logout", s.handleLogout)
			r.Get("/maps", s.handleListMaps)
			r.Post("/maps", s.handleInsertMap)
			r.Delete("/maps", s.handleDeleteMaps)
		})
	})
	s.router = r
	return s
}

// Handler returns the mountable HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
	HasSession  bool   `json:"has_session"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	user, err := s.users.Create(r.Context(), creds.Email, creds.Password)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	token, err := s.sessions.Issue(r.Context(), user)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.loggerFrom(r.Context()).Info("account created", "email", user.Email)
	writeJSON(w, http.StatusCreated, authResponse{User: user, AccessToken: token, HasSession: true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	user, err := s.users.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		// Credential failures share one message so accounts cannot be
		// enumerated.
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	token, err := s.sessions.Issue(r.Context(), user)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, AccessToken: token, HasSession: true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Revoke(r.Context(), bearerToken(r)); err != nil {
		s.loggerFrom(r.Context()).Warn("revoke failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	rows, err := s.maps.List(r.Context(), user.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if rows == nil {
		rows = []MapRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"maps": rows})
}

func (s *Server) handleInsertMap(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	var row MapRow
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if row.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	row.UserID = user.ID
	if err := s.maps.Insert(r.Context(), row); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.loggerFrom(r.Context()).Debug("map stored", "user", user.ID, "title", row.Title)
	w.WriteHeader(http.StatusCreated)
}

// handleDeleteMaps deletes one map when ?title= is present, otherwise
// the user's whole collection.
func (s *Server) handleDeleteMaps(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	title, err := url.QueryUnescape(r.URL.Query().Get("title"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed title")
		return
	}
	if title == "" {
		err = s.maps.DeleteAll(r.Context(), user.ID)
	} else {
		err = s.maps.DeleteByTitle(r.Context(), user.ID, title)
	}
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput:
		writeError(w, http.StatusBadRequest, errors.UserMessage(err))
	case errors.ErrCodeNotFound:
		writeError(w, http.StatusNotFound, errors.UserMessage(err))
	default:
		s.loggerFrom(r.Context()).Error("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ==========================================================================
// Auth middleware
// ==========================================================================

type ctxKey int

const (
	userKey ctxKey = iota
	loggerKey
)

func userFrom(ctx context.Context) User {
	user, _ := ctx.Value(userKey).(User)
	return user
}

// loggerFrom returns the request-scoped logger, falling back to the
// server logger for contexts that never passed through the middleware.
func (s *Server) loggerFrom(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return s.logger
}

// requestLogger stores a logger tagged with the request id in the
// request context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loggerKey, l)))
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// authenticate verifies the bearer token. The error bodies are stable
// strings the CLI matches to detect session expiry.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		user, err := s.sessions.Verify(r.Context(), token)
		if err != nil {
			switch {
			case stderrors.Is(err, ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, "JWT expired")
			case stderrors.Is(err, ErrTokenRevoked):
				writeError(w, http.StatusUnauthorized, "Unauthorized")
			default:
				writeError(w, http.StatusUnauthorized, "Invalid token")
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}
