package server

import (
	"net/http"

	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
	"github.com/digkill/PromptLibrary/internal/service"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// meResponse describes the caller. Guests get role "guest" and no user.
type meResponse struct {
	User         *models.User            `json:"user"`
	Subscription *models.Subscription    `json:"subscription,omitempty"`
	Plan         models.PlanType         `json:"plan"`
	Role         entitlement.Role        `json:"role"`
	Permissions  entitlement.Permissions `json:"permissions"`
}

func meOf(acct service.Account) meResponse {
	return meResponse{
		User:         acct.User,
		Subscription: acct.Subscription,
		Plan:         acct.Plan,
		Role:         acct.Role,
		Permissions:  acct.Permissions,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := s.svc.Auth.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meOf(accountFrom(r.Context())))
}
