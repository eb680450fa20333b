package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/swishwear/storefront/internal/auth"
	"github.com/swishwear/storefront/internal/cart"
)

type CartHandler struct {
	Repo *cart.Repo
	Log  zerolog.Logger
}

type cartItemReq struct {
	VariantID int64 `json:"variantId"`
	Qty       int   `json:"quantity"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/api/cart", h.get)
	r.Post("/api/cart/items", h.add)
	r.Put("/api/cart/items/{id}", h.update)
	r.Delete("/api/cart/items/{id}", h.remove)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Repo.Get(ctx, id.MemberID)
	if err != nil {
		h.Log.Error().Err(err).Msg("get cart failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.VariantID == 0 || req.Qty <= 0 {
		writeError(w, http.StatusBadRequest, "variantId and a positive quantity are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.AddItem(ctx, id.MemberID, req.VariantID, req.Qty); err != nil {
		if errors.Is(err, cart.ErrVariantNotFound) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("add cart item failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeMessage(w, "item added")
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Qty <= 0 {
		writeError(w, http.StatusBadRequest, "a positive quantity is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.UpdateItem(ctx, id.MemberID, itemID, req.Qty); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("update cart item failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeMessage(w, "item updated")
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.RemoveItem(ctx, id.MemberID, itemID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("remove cart item failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeMessage(w, "item removed")
}
