package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/swishwear/storefront/internal/auth"
	"github.com/swishwear/storefront/internal/member"
)

type ProfileHandler struct {
	Members *member.Repo
	Log     zerolog.Logger
}

type profileResp struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	AddressLine   string `json:"addressLine"`
	SubdistrictID int64  `json:"subdistrictId"`
}

type updateProfileReq struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	AddressLine   string `json:"addressLine"`
	SubdistrictID int64  `json:"subdistrictId"`
}

func (h *ProfileHandler) Register(r chi.Router) {
	r.Get("/api/profile", h.get)
	r.Put("/api/profile", h.update)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	m, err := h.Members.GetByID(ctx, id.MemberID)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("get profile failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, profileResp{
		ID:            m.ID,
		Email:         m.Email,
		Name:          m.Name,
		Phone:         m.Phone,
		AddressLine:   m.AddressLine,
		SubdistrictID: m.SubdistrictID,
	})
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	var req updateProfileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Members.UpdateProfile(ctx, id.MemberID, req.Name, req.Phone, req.AddressLine, req.SubdistrictID)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("update profile failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeMessage(w, "profile updated")
}
