package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digkill/PromptLibrary/internal/service"
)

const maxCoverUpload = 6 << 20

func (s *Server) adminRoutes(r chi.Router) {
	r.Use(requireAdmin)
	r.Route("/prompts", func(r chi.Router) {
		r.Get("/", s.handleAdminListPrompts)
		r.Post("/", s.handleAdminCreatePrompt)
		r.Put("/{id}", s.handleAdminUpdatePrompt)
		r.Delete("/{id}", s.handleAdminDeletePrompt)
	})
	r.Route("/articles", func(r chi.Router) {
		r.Get("/", s.handleAdminListArticles)
		r.Post("/", s.handleAdminCreateArticle)
		r.Get("/{id}", s.handleAdminGetArticle)
		r.Put("/{id}", s.handleAdminUpdateArticle)
		r.Delete("/{id}", s.handleAdminDeleteArticle)
		r.Post("/{id}/publish", s.handlePublishArticle)
		r.Post("/{id}/unpublish", s.handleUnpublishArticle)
		r.Post("/{id}/cover", s.handleUploadCover)
	})
	r.Route("/plans", func(r chi.Router) {
		r.Get("/", s.handleListPlans)
		r.Post("/", s.handleCreatePlan)
		r.Put("/{id}", s.handleUpdatePlan)
		r.Delete("/{id}", s.handleDeletePlan)
	})
	r.Get("/users", s.handleListUsers)
	r.Put("/users/{id}/admin", s.handleSetAdmin)
}

func (s *Server) handleAdminListPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.svc.PromptAdmin.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

func (s *Server) handleAdminCreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req service.PromptInput
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.svc.PromptAdmin.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleAdminUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req service.PromptInput
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.svc.PromptAdmin.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAdminDeletePrompt(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.PromptAdmin.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.svc.Articles.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleAdminCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req service.ArticleInput
	if !decodeJSON(w, r, &req) {
		return
	}
	article, err := s.svc.Articles.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// articleID parses the {id} segment and answers 400 itself when it is bad.
func articleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleAdminGetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	article, err := s.svc.Articles.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleAdminUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	var req service.ArticleInput
	if !decodeJSON(w, r, &req) {
		return
	}
	article, err := s.svc.Articles.Update(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleAdminDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Articles.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublishArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	article, err := s.svc.Articles.Publish(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleUnpublishArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	article, err := s.svc.Articles.Unpublish(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// handleUploadCover takes the image from the multipart field "file".
func (s *Server) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxCoverUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "file field required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "read file error")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	article, err := s.svc.Articles.UploadCover(r.Context(), id, data, contentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

type planRequest struct {
	PlanType        string `json:"plan_type"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Currency        string `json:"currency"`
	PriceMinorUnits int    `json:"price_minor_units"`
	StripePriceID   string `json:"stripe_price_id"`
	IsActive        *bool  `json:"is_active"`
}

type planUpdateRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Currency        *string `json:"currency"`
	PriceMinorUnits *int    `json:"price_minor_units"`
	StripePriceID   *string `json:"stripe_price_id"`
	IsActive        *bool   `json:"is_active"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.svc.Plans.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := s.svc.Plans.Create(r.Context(), service.CreatePlanInput{
		PlanType:        req.PlanType,
		Title:           req.Title,
		Description:     req.Description,
		Currency:        req.Currency,
		PriceMinorUnits: req.PriceMinorUnits,
		StripePriceID:   req.StripePriceID,
		IsActive:        req.IsActive,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	var req planUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := s.svc.Plans.Update(r.Context(), id, service.UpdatePlanInput{
		Title:           req.Title,
		Description:     req.Description,
		Currency:        req.Currency,
		PriceMinorUnits: req.PriceMinorUnits,
		StripePriceID:   req.StripePriceID,
		IsActive:        req.IsActive,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	if err := s.svc.Plans.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Accounts.ListUsers(r.Context(), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type setAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

func (s *Server) handleSetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	var req setAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.svc.Accounts.SetAdmin(r.Context(), id, req.IsAdmin)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("admin flag changed", "user_id", id, "is_admin", req.IsAdmin, "by", accountFrom(r.Context()).UserID())
	writeJSON(w, http.StatusOK, user)
}
