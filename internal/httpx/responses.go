package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/swishwear/storefront/internal/catalog"
	"github.com/swishwear/storefront/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeOrderError maps the order workflows' failures onto the response
// taxonomy: 404 for missing/not-owned, 400 for business-rule violations
// (naming the offending variant where known), 500 otherwise.
func writeOrderError(log zerolog.Logger, w http.ResponseWriter, err error) {
	var insufficient *catalog.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		writeError(w, http.StatusBadRequest, insufficient.Error())
	case errors.Is(err, catalog.ErrVariantNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrEmptyOrder), errors.Is(err, orders.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, orders.ErrNotCancellable):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("order workflow failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
