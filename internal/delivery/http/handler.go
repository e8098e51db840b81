package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vogiaan1904/ticketbottle-checkout/internal/service"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/money"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/razorpay"
	resp "github.com/vogiaan1904/ticketbottle-checkout/pkg/response"
)

// Webhook payloads are small; anything bigger is not from the gateway.
const maxWebhookBodyBytes = 1 << 20

const idempotencyKeyHeader = "Idempotency-Key"

type HTTPHandler struct {
	evSvc     service.EventService
	coSvc     service.CheckoutService
	stlSvc    service.SettlementService
	ordSvc    service.OrderService
	currency  string
	l         logger.Logger
	validator *validator.Validate
}

func NewHTTPHandler(
	evSvc service.EventService,
	coSvc service.CheckoutService,
	stlSvc service.SettlementService,
	ordSvc service.OrderService,
	currency string,
	l logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		evSvc:     evSvc,
		coSvc:     coSvc,
		stlSvc:    stlSvc,
		ordSvc:    ordSvc,
		currency:  currency,
		l:         l,
		validator: validator.New(),
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "checkout-service",
		"version": "1.0.0",
	})
}

func (h *HTTPHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req service.EventInput
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	out, err := h.evSvc.CreateEvent(r.Context(), claims.UserID, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondCreated(w, r, out)
}

func (h *HTTPHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req service.EventInput
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	out, err := h.evSvc.UpdateEvent(r.Context(), claims.UserID, chi.URLParam(r, "eventId"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, out)
}

func (h *HTTPHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	if err := h.evSvc.DeleteEvent(r.Context(), claims.UserID, chi.URLParam(r, "eventId")); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, nil)
}

func (h *HTTPHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	out, err := h.evSvc.GetEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, out)
}

func (h *HTTPHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := service.ListEventsInput{
		Query:      q.Get("q"),
		Location:   q.Get("location"),
		CategoryID: q.Get("category"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
	in.FreeOnly, _ = strconv.ParseBool(q.Get("is_free"))

	out, err := h.evSvc.ListEvents(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, out)
}

func (h *HTTPHandler) ListEventsByOrganizer(w http.ResponseWriter, r *http.Request) {
	out, err := h.evSvc.ListEventsByOrganizer(r.Context(), chi.URLParam(r, "organizerId"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, out)
}

// ListRelatedEvents lists other events in the same category as eventId.
func (h *HTTPHandler) ListRelatedEvents(w http.ResponseWriter, r *http.Request) {
	ev, err := h.evSvc.GetEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out, err := h.evSvc.ListRelatedEvents(r.Context(), ev.CategoryID, ev.ID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, out)
}

func (h *HTTPHandler) ValidateCart(w http.ResponseWriter, r *http.Request) {
	var req validateCartRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	submitted, err := h.parseTotal(req.SubmittedTotal)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	pc, err := h.coSvc.ValidateCart(r.Context(), chi.URLParam(r, "eventId"), req.Lines, submitted)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, newPricedCartResponse(pc, h.currency))
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req checkoutRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if claims.EventID != "" && claims.EventID != req.EventID {
		h.respondError(w, r, errTokenEventMismatch)
		return
	}

	submitted, err := h.parseTotal(req.SubmittedTotal)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out, err := h.coSvc.CreatePaymentIntent(r.Context(), service.CreatePaymentIntentInput{
		EventID:        req.EventID,
		BuyerID:        claims.UserID,
		SessionID:      claims.SessionID,
		Lines:          req.Lines,
		SubmittedTotal: submitted,
		Attendee:       req.Attendee,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondCreated(w, r, newPaymentIntentResponse(out))
}

// RegisterFreeTickets issues free tickets without a payment. Retries carrying
// the same Idempotency-Key header return the original order.
func (h *HTTPHandler) RegisterFreeTickets(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	eventID := chi.URLParam(r, "eventId")

	var req registerFreeRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if claims.EventID != "" && claims.EventID != eventID {
		h.respondError(w, r, errTokenEventMismatch)
		return
	}

	o, err := h.stlSvc.RegisterFreeTickets(r.Context(), service.FreeRegistrationInput{
		EventID:        eventID,
		BuyerID:        claims.UserID,
		SessionID:      claims.SessionID,
		Lines:          req.Lines,
		Attendee:       req.Attendee,
		IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondCreated(w, r, o)
}

func (h *HTTPHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req confirmPaymentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	out, err := h.stlSvc.ConfirmPayment(r.Context(), service.ConfirmPaymentInput{
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
		BuyerID:        claims.UserID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, out)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	o, err := h.ordSvc.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if o.BuyerID != claims.UserID {
		h.respondError(w, r, errNotOrderOwner)
		return
	}

	h.respondOK(w, r, o)
}

func (h *HTTPHandler) ListOrdersByEvent(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	eventID := chi.URLParam(r, "eventId")

	ev, err := h.evSvc.GetEvent(r.Context(), eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if ev.OrganizerID != claims.UserID {
		h.respondError(w, r, errNotEventOrganizer)
		return
	}

	orders, err := h.ordSvc.ListOrdersByEvent(r.Context(), eventID, r.URL.Query().Get("search"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, orders)
}

func (h *HTTPHandler) ListOrdersByBuyer(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	buyerID := chi.URLParam(r, "buyerId")
	if buyerID != claims.UserID {
		h.respondError(w, r, errNotOrderOwner)
		return
	}

	out, err := h.ordSvc.ListOrdersByBuyer(r.Context(), buyerID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondOK(w, r, out)
}

// RazorpayWebhook answers 2xx only when the delivery needs no retry.
func (h *HTTPHandler) RazorpayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.respondError(w, r, errInvalidBody)
		return
	}

	out, err := h.stlSvc.HandlePaymentCallback(r.Context(), body, r.Header.Get(razorpay.SignatureHeader))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, out)
}

func (h *HTTPHandler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errValidation.WithDetails(fieldErrors(verrs))
		}
		return errValidation
	}
	return nil
}

// parseTotal reads an optional major-unit total like "1500.00".
func (h *HTTPHandler) parseTotal(s *string) (*int64, error) {
	if s == nil {
		return nil, nil
	}
	v, err := money.ToMinor(*s, h.currency)
	if err != nil {
		return nil, errValidation.WithDetails([]fieldError{{Field: "submitted_total", Reason: err.Error()}})
	}
	return &v, nil
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	if err := resp.JSON(w, statusCode, data); err != nil {
		h.l.Errorf(r.Context(), "delivery.http.respondJSON: %v", err)
	}
}

func (h *HTTPHandler) respondOK(w http.ResponseWriter, r *http.Request, data any) {
	if err := resp.OK(w, data); err != nil {
		h.l.Errorf(r.Context(), "delivery.http.respondOK: %v", err)
	}
}

func (h *HTTPHandler) respondCreated(w http.ResponseWriter, r *http.Request, data any) {
	if err := resp.Created(w, data); err != nil {
		h.l.Errorf(r.Context(), "delivery.http.respondCreated: %v", err)
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	mapped, known := mapHTTPError(err)
	if known {
		h.l.Debugf(r.Context(), "delivery.http: %s %s: %v", r.Method, r.URL.Path, err)
	} else {
		h.l.Errorf(r.Context(), "delivery.http: %s %s: %v", r.Method, r.URL.Path, err)
	}

	if err := resp.Error(w, mapped); err != nil {
		h.l.Errorf(r.Context(), "delivery.http.respondError: %v", err)
	}
}
