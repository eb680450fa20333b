package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swishwear/storefront/internal/catalog"
	"github.com/swishwear/storefront/internal/upload"
)

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" {
		writeError(w, http.StatusBadRequest, "product name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Catalog.CreateProduct(ctx, p)
	if err != nil {
		h.Log.Error().Err(err).Msg("create product failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.invalidateGrid(ctx, p.CategoryID)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = id

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("update product failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.invalidateGrid(ctx, p.CategoryID)
	writeMessage(w, "product updated")
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("delete product failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.invalidateGrid(ctx)
	writeMessage(w, "product removed")
}

func (h *AdminHandler) createVariant(w http.ResponseWriter, r *http.Request) {
	productID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var v catalog.Variant
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil || v.SKU == "" {
		writeError(w, http.StatusBadRequest, "variant sku is required")
		return
	}
	if v.Stock < 0 || v.PriceSatang < 0 || v.CostSatang < 0 {
		writeError(w, http.StatusBadRequest, "stock, price and cost must not be negative")
		return
	}
	v.ProductID = productID

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Catalog.CreateVariant(ctx, v)
	if err != nil {
		h.Log.Error().Err(err).Msg("create variant failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.invalidateGrid(ctx)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *AdminHandler) updateVariant(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid variant id")
		return
	}
	var v catalog.Variant
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if v.Stock < 0 || v.PriceSatang < 0 || v.CostSatang < 0 {
		writeError(w, http.StatusBadRequest, "stock, price and cost must not be negative")
		return
	}
	v.ID = id

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.UpdateVariant(ctx, v); err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("update variant failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.invalidateGrid(ctx)
	writeMessage(w, "variant updated")
}

func (h *AdminHandler) deleteVariant(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid variant id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.DeleteVariant(ctx, id); err != nil {
		switch {
		case errors.Is(err, catalog.ErrVariantNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, catalog.ErrVariantReferenced):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error().Err(err).Msg("delete variant failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	h.invalidateGrid(ctx)
	writeMessage(w, "variant removed")
}

func (h *AdminHandler) addPicture(w http.ResponseWriter, r *http.Request) {
	productID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := r.ParseMultipartForm(maxSlipBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "picture file is required")
		return
	}
	defer file.Close()

	sortOrder, _ := strconv.Atoi(r.FormValue("sortOrder"))

	path, err := h.Pictures.Save("products", header.Filename, file)
	if err != nil {
		if errors.Is(err, upload.ErrBadFileType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("picture save failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Catalog.AddPicture(ctx, productID, path, sortOrder)
	if err != nil {
		h.Log.Error().Err(err).Msg("add picture failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.invalidateGrid(ctx)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "path": path})
}

func (h *AdminHandler) deletePicture(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid picture id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.DeletePicture(ctx, id); err != nil {
		writeError(w, http.StatusNotFound, "picture not found")
		return
	}
	h.invalidateGrid(ctx)
	writeMessage(w, "picture removed")
}

// reportRange parses from/to query params; defaults to the last 30 days.
func reportRange(r *http.Request) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.AddDate(0, 0, 1) // inclusive end date
		}
	}
	return from, to
}

func (h *AdminHandler) salesReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	from, to := reportRange(r)
	out, err := h.Reports.SalesByDay(ctx, from, to)
	if err != nil {
		h.Log.Error().Err(err).Msg("sales report failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	from, to := reportRange(r)
	out, err := h.Reports.TopVariants(ctx, from, to, limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("top products report failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
