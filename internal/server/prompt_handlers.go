package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/digkill/PromptLibrary/internal/catalog"
	"github.com/digkill/PromptLibrary/internal/service"
)

// queryFrom reads the catalog filter from the query string. Tags may be
// repeated or comma separated.
func queryFrom(r *http.Request) catalog.Query {
	q := r.URL.Query()
	var tags []string
	for _, raw := range q["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return catalog.Query{
		Category: q.Get("category"),
		UseCase:  q.Get("useCase"),
		Tags:     tags,
		TagMode:  catalog.ParseTagMode(q.Get("tagMode")),
		Text:     q.Get("q"),
		SortBy:   catalog.ParseSortOrder(q.Get("sort")),
	}
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	listing, err := s.svc.Library.List(r.Context(), accountFrom(r.Context()), service.ListRequest{
		Query:    queryFrom(r),
		View:     catalog.View(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("view")))),
		FolderID: r.URL.Query().Get("folder"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tags, err := s.svc.Library.Tags(r.Context(), q.Get("category"), q.Get("useCase"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Library.Get(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUsePrompt(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Library.RecordUse(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renderRequest struct {
	Values map[string]string `json:"values"`
}

func (s *Server) handleRenderPrompt(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.svc.Library.Render(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id"), req.Values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
