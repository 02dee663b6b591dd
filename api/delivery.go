package api

import (
	"net/http"

	"food-delivery/services"
)

func (h *Handler) deliveryPartner(w http.ResponseWriter, r *http.Request) (*services.DeliveryPartner, bool) {
	d, err := h.Roles.DeliveryPartner(accountFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return d, true
}

func (h *Handler) deliveryOrders(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deliveryPartner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.ViewAssignedOrders(r.Context()))
}

func (h *Handler) openOrders(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deliveryPartner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.ViewOpenOrders(r.Context()))
}

func (h *Handler) acceptOrder(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deliveryPartner(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := d.AcceptOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) deliveryUpdateStatus(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deliveryPartner(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := d.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) earnings(w http.ResponseWriter, r *http.Request) {
	d, ok := h.deliveryPartner(w, r)
	if !ok {
		return
	}
	e, err := d.Earnings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"earnings": e})
}
