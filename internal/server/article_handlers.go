package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.svc.Articles.ListPublished(r.Context(), accountFrom(r.Context()), r.URL.Query().Get("category"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}
	article, err := s.svc.Articles.GetPublished(r.Context(), accountFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}
