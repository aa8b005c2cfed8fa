// Package server exposes the prompt library over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/digkill/PromptLibrary/internal/config"
	"github.com/digkill/PromptLibrary/internal/service"
)

// Services are the use cases the HTTP layer dispatches to.
type Services struct {
	Auth          *service.AuthService
	Accounts      *service.AccountService
	Library       *service.LibraryService
	Favorites     *service.FavoriteService
	Folders       *service.FolderService
	CustomPrompts *service.CustomPromptService
	Import        *service.ImportService
	Articles      *service.ArticleService
	PromptAdmin   *service.PromptAdminService
	Plans         *service.PlanService
	Billing       *service.BillingService
}

type Server struct {
	addr          string
	webhookSecret string
	log           *slog.Logger
	svc           Services
	router        *chi.Mux
}

func NewServer(cfg config.Config, log *slog.Logger, svc Services) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:          cfg.ListenAddr,
		webhookSecret: cfg.StripeWebhookSecret,
		log:           log,
		svc:           svc,
		router:        r,
	}
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	// Stripe signs the raw body and authenticates itself.
	r.Post("/webhook/stripe", s.handleStripeWebhook)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		r.Use(s.authenticate)

		r.Route("/api", func(r chi.Router) {
			r.Post("/auth/register", s.handleRegister)
			r.Post("/auth/login", s.handleLogin)
			r.Get("/me", s.handleMe)

			r.Route("/prompts", func(r chi.Router) {
				r.Get("/", s.handleListPrompts)
				r.Get("/tags", s.handleTags)
				r.Get("/{id}", s.handleGetPrompt)
				r.Post("/{id}/use", s.handleUsePrompt)
				r.Post("/{id}/render", s.handleRenderPrompt)
			})
			r.Get("/articles", s.handleListArticles)
			r.Get("/articles/{id}", s.handleGetArticle)
			r.Get("/plans", s.handleListActivePlans)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				s.meRoutes(r)
				r.Route("/billing", func(r chi.Router) {
					r.Post("/checkout", s.handleCheckout)
					r.Post("/portal", s.handlePortal)
					r.Post("/sync", s.handleSync)
				})
			})
		})

		r.Route("/admin", s.adminRoutes)
	})
	return s
}

// meRoutes registers the signed-in routes under /me. They are flat so that
// the public GET /me keeps its own handler.
func (s *Server) meRoutes(r chi.Router) {
	r.Get("/me/stats", s.handleStats)
	r.Get("/me/recommendations", s.handleRecommendations)
	r.Post("/me/import", s.handleImport)

	r.Get("/me/favorites", s.handleListFavorites)
	r.Put("/me/favorites/{promptID}", s.handleAddFavorite)
	r.Delete("/me/favorites/{promptID}", s.handleRemoveFavorite)

	r.Route("/me/folders", func(r chi.Router) {
		r.Get("/", s.handleListFolders)
		r.Post("/", s.handleCreateFolder)
		r.Put("/{id}", s.handleRenameFolder)
		r.Delete("/{id}", s.handleDeleteFolder)
		r.Get("/{id}/prompts", s.handleFolderPrompts)
		r.Post("/{id}/prompts", s.handleAddFolderPrompt)
		r.Delete("/{id}/prompts/{promptID}", s.handleRemoveFolderPrompt)
	})

	r.Route("/me/prompts", func(r chi.Router) {
		r.Get("/", s.handleListCustomPrompts)
		r.Post("/", s.handleCreateCustomPrompt)
		r.Put("/{id}", s.handleUpdateCustomPrompt)
		r.Delete("/{id}", s.handleDeleteCustomPrompt)
	})
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("http shutdown error", "err", err)
		}
	}()

	s.log.Info("http server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeError maps service errors to status codes. Unknown errors are logged
// and reported as a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrLimitReached):
		status, code = http.StatusForbidden, "limit_reached"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrBillingDisabled):
		status, code = http.StatusServiceUnavailable, "billing_disabled"
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeErrorCode(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	writeErrorCode(w, status, code, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return false
	}
	return true
}

func parseID(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
