package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/swishwear/storefront/internal/auth"
	"github.com/swishwear/storefront/internal/member"
)

type AuthHandler struct {
	Members *member.Repo
	Tokens  *auth.Maker
	Log     zerolog.Logger
}

type registerReq struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	AddressLine   string `json:"addressLine"`
	SubdistrictID int64  `json:"subdistrictId"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token  string `json:"token"`
	Member any    `json:"member"`
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/auth/register", h.register)
	r.Post("/api/auth/login", h.login)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "email and a password of at least 8 characters are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error().Err(err).Msg("password hash failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Members.Create(ctx, member.Member{
		Email:         req.Email,
		PasswordHash:  hash,
		Name:          req.Name,
		Phone:         req.Phone,
		Role:          auth.RoleMember,
		AddressLine:   req.AddressLine,
		SubdistrictID: req.SubdistrictID,
	})
	if err != nil {
		if errors.Is(err, member.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("member create failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.Tokens.Issue(id, auth.RoleMember)
	if err != nil {
		h.Log.Error().Err(err).Msg("token issue failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, loginResp{Token: token, Member: map[string]any{
		"id": id, "email": req.Email, "name": req.Name, "role": auth.RoleMember,
	}})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	m, err := h.Members.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil || !auth.CheckPassword(m.PasswordHash, req.Password) {
		// identical answer for unknown email and wrong password
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.Tokens.Issue(m.ID, m.Role)
	if err != nil {
		h.Log.Error().Err(err).Msg("token issue failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, Member: map[string]any{
		"id": m.ID, "email": m.Email, "name": m.Name, "role": m.Role,
	}})
}
