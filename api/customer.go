package api

import (
	"net/http"

	"food-delivery/models"
	"food-delivery/services"
)

type quantityRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type paymentRequest struct {
	Method models.PaymentMethod `json:"method"`
}

type subscribeRequest struct {
	Tier models.Tier `json:"tier"`
	Days int         `json:"days"`
}

// customer resolves the caller's Customer view or writes 403.
func (h *Handler) customer(w http.ResponseWriter, r *http.Request) (*services.Customer, bool) {
	c, err := h.Roles.Customer(accountFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return c, true
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	q, err := c.ViewCart(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	if err := c.ClearCart(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cart, err := c.AddToCart(r.Context(), req.MenuItemID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) updateCartQuantity(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "entryId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cart, err := c.UpdateCartQuantity(r.Context(), entryID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "entryId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cart, err := c.RemoveFromCart(r.Context(), entryID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) getMembership(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	m, err := c.Membership(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if m == nil {
		m = &models.Membership{CustomerID: c.ID(), Tier: models.TierNone}
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	var req subscribeRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := c.Subscribe(r.Context(), req.Tier, req.Days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	o, err := c.PlaceOrder(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.OrderHistory(r.Context()))
}

func (h *Handler) orderDetails(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := c.OrderDetails(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status, err := c.TrackOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": id, "status": status})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := c.CancelOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := c.Pay(r.Context(), id, req.Method)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) orderQRCode(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := c.TrackOrder(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	png, err := h.QR.Generate(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) updateOrderItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := c.UpdateOrderItem(r.Context(), orderID, itemID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) removeOrderItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.customer(w, r)
	if !ok {
		return
	}
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := c.RemoveOrderItem(r.Context(), orderID, itemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
