// Package api exposes the ordering workflow over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"food-delivery/services"
	"food-delivery/store"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type Handler struct {
	Accounts *services.AccountService
	Sessions store.Sessions
	Roles    *services.Roles
	QR       services.QRGenerator
	Log      *slog.Logger
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(h.requestID, h.accessLog)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.health).Methods(http.MethodGet)
	api.HandleFunc("/signup", h.signup).Methods(http.MethodPost)
	api.HandleFunc("/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/restaurants", h.listRestaurants).Methods(http.MethodGet)
	api.HandleFunc("/restaurants/{restaurantId}/menu", h.getMenu).Methods(http.MethodGet)
	api.HandleFunc("/menu-items/{itemId}", h.getMenuItem).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(h.authenticate)
	authed.HandleFunc("/logout", h.logout).Methods(http.MethodPost)

	// Customer
	authed.HandleFunc("/cart", h.viewCart).Methods(http.MethodGet)
	authed.HandleFunc("/cart", h.clearCart).Methods(http.MethodDelete)
	authed.HandleFunc("/cart/items", h.addToCart).Methods(http.MethodPost)
	authed.HandleFunc("/cart/items/{entryId}", h.updateCartQuantity).Methods(http.MethodPatch)
	authed.HandleFunc("/cart/items/{entryId}", h.removeFromCart).Methods(http.MethodDelete)
	authed.HandleFunc("/membership", h.getMembership).Methods(http.MethodGet)
	authed.HandleFunc("/membership", h.subscribe).Methods(http.MethodPut)
	authed.HandleFunc("/orders", h.placeOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders", h.orderHistory).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{orderId}", h.orderDetails).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{orderId}/status", h.trackOrder).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{orderId}/cancel", h.cancelOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders/{orderId}/payment", h.pay).Methods(http.MethodPost)
	authed.HandleFunc("/orders/{orderId}/qrcode", h.orderQRCode).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{orderId}/items/{itemId}", h.updateOrderItem).Methods(http.MethodPatch)
	authed.HandleFunc("/orders/{orderId}/items/{itemId}", h.removeOrderItem).Methods(http.MethodDelete)

	// Restaurant partner
	authed.HandleFunc("/partner/menu-items", h.partnerMenu).Methods(http.MethodGet)
	authed.HandleFunc("/partner/menu-items", h.addMenuItem).Methods(http.MethodPost)
	authed.HandleFunc("/partner/menu-items/{itemId}", h.updateMenuItem).Methods(http.MethodPut)
	authed.HandleFunc("/partner/menu-items/{itemId}/availability", h.setAvailability).Methods(http.MethodPatch)
	authed.HandleFunc("/partner/menu-items/{itemId}", h.removeMenuItem).Methods(http.MethodDelete)
	authed.HandleFunc("/partner/orders", h.partnerOrders).Methods(http.MethodGet)
	authed.HandleFunc("/partner/orders/{orderId}/status", h.partnerUpdateStatus).Methods(http.MethodPost)
	authed.HandleFunc("/partner/sales", h.partnerSales).Methods(http.MethodGet)

	// Delivery partner
	authed.HandleFunc("/delivery/orders", h.deliveryOrders).Methods(http.MethodGet)
	authed.HandleFunc("/delivery/orders/open", h.openOrders).Methods(http.MethodGet)
	authed.HandleFunc("/delivery/orders/{orderId}/accept", h.acceptOrder).Methods(http.MethodPost)
	authed.HandleFunc("/delivery/orders/{orderId}/status", h.deliveryUpdateStatus).Methods(http.MethodPost)
	authed.HandleFunc("/delivery/earnings", h.earnings).Methods(http.MethodGet)
}

// NewRouter wraps the routes with CORS for the given origins.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
	})
	return c.Handler(r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
