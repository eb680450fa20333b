package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/swishwear/storefront/internal/catalog"
	"github.com/swishwear/storefront/internal/member"
	"github.com/swishwear/storefront/internal/redisx"
)

// CatalogHandler serves the public storefront: product grid, product
// detail and the read-only reference data (categories, Thai addresses).
type CatalogHandler struct {
	Repo    *catalog.Repo
	Members *member.Repo
	Redis   *redis.Client
	Log     zerolog.Logger
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/api/products", h.listProducts)
	r.Get("/api/products/{id}", h.getProduct)
	r.Get("/api/categories", h.listCategories)
	r.Get("/api/addresses/provinces", h.provinces)
	r.Get("/api/addresses/districts", h.districts)
	r.Get("/api/addresses/subdistricts", h.subdistricts)
}

func queryID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	categoryID := queryID(r, "category_id")

	// grid cache: short TTL, invalidated by admin writes
	key := fmt.Sprintf(redisx.KeyProductList, categoryID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	out, err := h.Repo.ListProducts(ctx, categoryID)
	if err != nil {
		h.Log.Error().Err(err).Msg("list products failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(out); err == nil {
			_ = h.Redis.Set(ctx, key, b, redisx.TTLProductList).Err()
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("get product failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.ListCategories(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("list categories failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) provinces(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Members.Provinces(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("list provinces failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) districts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Members.Districts(ctx, queryID(r, "province_id"))
	if err != nil {
		h.Log.Error().Err(err).Msg("list districts failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) subdistricts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Members.Subdistricts(ctx, queryID(r, "district_id"))
	if err != nil {
		h.Log.Error().Err(err).Msg("list subdistricts failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
