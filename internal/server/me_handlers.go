package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digkill/PromptLibrary/internal/catalog"
	"github.com/digkill/PromptLibrary/internal/service"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Library.Stats(r.Context(), accountFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.Library.Recommendations(r.Context(), accountFrom(r.Context()), queryInt(r, "count", 0))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req service.ImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.svc.Import.Import(r.Context(), accountFrom(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("local data imported",
		"user_id", accountFrom(r.Context()).UserID(),
		"favorites", result.Uploaded.Favorites,
		"folders", result.Uploaded.Folders,
		"custom_prompts", result.Uploaded.CustomPrompts,
	)
	writeJSON(w, http.StatusOK, result)
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
}

func (s *Server) writeFavorites(w http.ResponseWriter, r *http.Request, ids []string, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Favorites: ids})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Favorites.List(r.Context(), accountFrom(r.Context()))
	s.writeFavorites(w, r, ids, err)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Favorites.Add(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "promptID"))
	s.writeFavorites(w, r, ids, err)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Favorites.Remove(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "promptID"))
	s.writeFavorites(w, r, ids, err)
}

type folderRequest struct {
	Name string `json:"name"`
}

type folderPromptRequest struct {
	PromptID string `json:"promptId"`
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.svc.Folders.List(r.Context(), accountFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	folder, err := s.svc.Folders.Create(r.Context(), accountFrom(r.Context()), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	folder, err := s.svc.Folders.Rename(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Folders.Delete(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFolderPrompts lists the folder through the catalog pipeline so the
// usual filters and sort apply.
func (s *Server) handleFolderPrompts(w http.ResponseWriter, r *http.Request) {
	listing, err := s.svc.Library.List(r.Context(), accountFrom(r.Context()), service.ListRequest{
		Query:    queryFrom(r),
		View:     catalog.ViewFolder,
		FolderID: chi.URLParam(r, "id"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleAddFolderPrompt(w http.ResponseWriter, r *http.Request) {
	var req folderPromptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	folder, err := s.svc.Folders.AddPrompt(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id"), req.PromptID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (s *Server) handleRemoveFolderPrompt(w http.ResponseWriter, r *http.Request) {
	folder, err := s.svc.Folders.RemovePrompt(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "promptID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (s *Server) handleListCustomPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.svc.CustomPrompts.List(r.Context(), accountFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prompts)
}

func (s *Server) handleCreateCustomPrompt(w http.ResponseWriter, r *http.Request) {
	var req service.PromptInput
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.svc.CustomPrompts.Create(r.Context(), accountFrom(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateCustomPrompt(w http.ResponseWriter, r *http.Request) {
	var req service.PromptInput
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.svc.CustomPrompts.Update(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteCustomPrompt(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.CustomPrompts.Delete(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
