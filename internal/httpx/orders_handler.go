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

	"github.com/swishwear/storefront/internal/auth"
	kafkax "github.com/swishwear/storefront/internal/kafka"
	"github.com/swishwear/storefront/internal/orders"
	"github.com/swishwear/storefront/internal/payment"
	"github.com/swishwear/storefront/internal/redisx"
	"github.com/swishwear/storefront/internal/upload"
)

// qrValidFor is how long the returned QR is presented as payable. The
// sweeper enforces the real expiry server-side.
const qrValidFor = 5 * time.Minute

const maxSlipBytes = 10 << 20

// EventPublisher is satisfied by *kafka.Producer; tests use a stub.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Repo    *orders.Repo
	Slips   *upload.Storage
	Pay     *payment.Generator
	Created EventPublisher
	Status  EventPublisher
	Redis   *redis.Client
	Service string
	Log     zerolog.Logger
}

type createManualReq struct {
	Items []orders.LineInput `json:"items"`
	// Subtotal is what the client believes it owes; advisory only, the
	// server recomputes from variant prices.
	Subtotal int `json:"subtotal"`
}

type createManualResp struct {
	OrderID     string    `json:"orderId"`
	QRCodeImage string    `json:"qrCodeImage"`
	TotalAmount int       `json:"totalAmount"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/api/orders/create-manual", h.createManual)
	r.Post("/api/orders/upload-slip/{orderID}", h.uploadSlip)
	r.Post("/api/orders/cancel/{orderID}", h.cancel)
	r.Post("/api/orders/delete-pending/{orderID}", h.deletePending)
	r.Get("/api/orders", h.listMine)
	r.Get("/api/orders/{orderID}", h.getMine)
}

func (h *OrdersHandler) createManual(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	var req createManualReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := h.Repo.CreateManual(ctx, id.MemberID, req.Items)
	if err != nil {
		writeOrderError(h.Log, w, err)
		return
	}
	// payment window runs from commit, not from the header insert
	expiresAt := time.Now().Add(qrValidFor)

	qr, err := h.Pay.QRDataURL(created.TotalSatang)
	if err != nil {
		h.Log.Error().Err(err).Str("order_id", created.ID).Msg("qr generation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.cacheStatus(ctx, created.ID, orders.StatusPending)
	h.publishCreated(r, id.MemberID, created, req.Items)

	writeJSON(w, http.StatusCreated, createManualResp{
		OrderID:     created.ID,
		QRCodeImage: qr,
		TotalAmount: created.TotalSatang,
		ExpiresAt:   expiresAt,
	})
}

func (h *OrdersHandler) uploadSlip(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	orderID := chi.URLParam(r, "orderID")

	if err := r.ParseMultipartForm(maxSlipBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("slip")
	if err != nil {
		writeError(w, http.StatusBadRequest, "slip file is required")
		return
	}
	defer file.Close()

	path, err := h.Slips.Save("slips", header.Filename, file)
	if err != nil {
		if err == upload.ErrBadFileType {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("slip save failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.ConfirmSlip(ctx, orderID, id.MemberID, path); err != nil {
		// the order was not pending or not owned; the stored file has no owner
		h.Slips.Remove(path)
		writeOrderError(h.Log, w, err)
		return
	}

	h.cacheStatus(ctx, orderID, orders.StatusVerifying)
	h.publishStatus(r, orderID, id.MemberID, orders.StatusPending, orders.StatusVerifying)
	writeMessage(w, "slip received, awaiting verification")
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.CancelPending(ctx, orderID, id.MemberID); err != nil {
		writeOrderError(h.Log, w, err)
		return
	}
	h.cacheStatus(ctx, orderID, orders.StatusCancelled)
	h.publishStatus(r, orderID, id.MemberID, orders.StatusPending, orders.StatusCancelled)
	writeMessage(w, "order cancelled")
}

func (h *OrdersHandler) deletePending(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.DeletePending(ctx, orderID, id.MemberID); err != nil {
		writeOrderError(h.Log, w, err)
		return
	}
	h.dropStatus(ctx, orderID)
	writeMessage(w, "order deleted")
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.ListByMember(ctx, id.MemberID)
	if err != nil {
		writeOrderError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getMine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.Get(ctx, orderID, id.MemberID)
	if err != nil {
		writeOrderError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, s orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, s), redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) dropStatus(ctx context.Context, orderID string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
}

func (h *OrdersHandler) publishCreated(r *http.Request, memberID int64, created *orders.CreatedOrder, items []orders.LineInput) {
	if h.Created == nil {
		return
	}
	lines := make([]orders.LineQty, 0, len(items))
	for _, it := range items {
		lines = append(lines, orders.LineQty{VariantID: it.VariantID, Qty: it.Qty})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: created.ID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:     created.ID,
			MemberID:    memberID,
			Lines:       lines,
			TotalSatang: created.TotalSatang,
		}),
	}
	h.Created.Publish(orders.PartitionKey(created.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) publishStatus(r *http.Request, orderID string, memberID int64, old, next orders.Status) {
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
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID:   orderID,
			MemberID:  memberID,
			OldStatus: old,
			NewStatus: next,
		}),
	}
	h.Status.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
