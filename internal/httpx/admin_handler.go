package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/swishwear/storefront/internal/catalog"
	kafkax "github.com/swishwear/storefront/internal/kafka"
	"github.com/swishwear/storefront/internal/orders"
	"github.com/swishwear/storefront/internal/redisx"
	"github.com/swishwear/storefront/internal/reports"
	"github.com/swishwear/storefront/internal/upload"
)

// AdminHandler is the back office: order management with stock
// reconciliation, product/variant/picture CRUD and sales reports. Mounted
// behind RequireAuth + RequireAdmin.
type AdminHandler struct {
	Orders   *orders.Repo
	Catalog  *catalog.Repo
	Reports  *reports.Repo
	Pictures *upload.Storage
	Status   EventPublisher
	Redis    *redis.Client
	Service  string
	Log      zerolog.Logger
}

type setStatusReq struct {
	Status     orders.Status `json:"status"`
	AdminNotes string        `json:"adminNotes"`
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/api/admin/orders", h.listOrders)
	r.Get("/api/admin/orders/{orderID}", h.getOrder)
	r.Put("/api/admin/orders/{orderID}/status", h.setStatus)

	r.Post("/api/admin/products", h.createProduct)
	r.Put("/api/admin/products/{id}", h.updateProduct)
	r.Delete("/api/admin/products/{id}", h.deleteProduct)
	r.Post("/api/admin/products/{id}/variants", h.createVariant)
	r.Put("/api/admin/variants/{id}", h.updateVariant)
	r.Delete("/api/admin/variants/{id}", h.deleteVariant)
	r.Post("/api/admin/products/{id}/pictures", h.addPicture)
	r.Delete("/api/admin/pictures/{id}", h.deletePicture)

	r.Get("/api/admin/reports/sales", h.salesReport)
	r.Get("/api/admin/reports/top-products", h.topProducts)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := orders.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	out, err := h.Orders.ListAll(ctx, status)
	if err != nil {
		h.Log.Error().Err(err).Msg("admin list orders failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Orders.Get(ctx, chi.URLParam(r, "orderID"), 0)
	if err != nil {
		writeOrderError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// setStatus applies the admin status transition; the repo reconciles
// stock from the stored old status vs the requested one.
func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req setStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, err := h.Orders.SetStatus(ctx, orderID, req.Status, req.AdminNotes)
	if err != nil {
		writeOrderError(h.Log, w, err)
		return
	}

	if h.Redis != nil {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	}
	h.publishStatusChanged(r, t)
	writeMessage(w, "status updated")
}

func (h *AdminHandler) publishStatusChanged(r *http.Request, t *orders.Transition) {
	if h.Status == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: t.OrderID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID:   t.OrderID,
			MemberID:  t.MemberID,
			OldStatus: t.OldStatus,
			NewStatus: t.NewStatus,
		}),
	}
	h.Status.Publish(orders.PartitionKey(t.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// invalidateGrid drops the cached storefront grids after catalog writes.
func (h *AdminHandler) invalidateGrid(ctx context.Context, categoryIDs ...int64) {
	if h.Redis == nil {
		return
	}
	keys := []string{fmt.Sprintf(redisx.KeyProductList, int64(0))}
	for _, id := range categoryIDs {
		if id != 0 {
			keys = append(keys, fmt.Sprintf(redisx.KeyProductList, id))
		}
	}
	_ = h.Redis.Del(ctx, keys...).Err()
}
