package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vogiaan1904/ticketbottle-checkout/pkg/logger"
)

func NewRouter(h *HTTPHandler, jwtSecret string, l logger.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.HTTPLogger(l))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	auth := Authenticate(jwtSecret, l)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/razorpay", h.RazorpayWebhook)

		r.Get("/events", h.ListEvents)
		r.Get("/events/{eventId}", h.GetEvent)
		r.Get("/events/{eventId}/related", h.ListRelatedEvents)
		r.Post("/events/{eventId}/cart/validate", h.ValidateCart)
		r.Get("/organizers/{organizerId}/events", h.ListEventsByOrganizer)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Post("/events", h.CreateEvent)
			r.Put("/events/{eventId}", h.UpdateEvent)
			r.Delete("/events/{eventId}", h.DeleteEvent)
			r.Post("/events/{eventId}/register", h.RegisterFreeTickets)
			r.Get("/events/{eventId}/orders", h.ListOrdersByEvent)

			r.Post("/checkout", h.Checkout)
			r.Post("/orders/confirm", h.ConfirmPayment)
			r.Get("/orders/{orderId}", h.GetOrder)
			r.Get("/buyers/{buyerId}/orders", h.ListOrdersByBuyer)
		})
	})

	return r
}
