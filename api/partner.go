package api

import (
	"net/http"

	"food-delivery/models"
	"food-delivery/services"
)

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h *Handler) restaurantPartner(w http.ResponseWriter, r *http.Request) (*services.RestaurantPartner, bool) {
	p, err := h.Roles.RestaurantPartner(accountFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return p, true
}

func (h *Handler) partnerMenu(w http.ResponseWriter, r *http.Request) {
	p, ok := h.restaurantPartner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Menu(r.Context()))
}

func (h *Handler) addMenuItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.restaurantPartner(w, r)
	if !ok {
		return
	}
	var in models.MenuItemInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := p.AddMenuItem(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.restaurantPartner(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "itemId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in models.MenuItemInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := p.UpdateMenuItem(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	p, ok := h.restaurantPartner(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "itemId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req availabilityRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := p.SetAvailability(r.Context(), id, req.Available); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeMenuItem(w http.ResponseWriter, r *http.Request) {
	p, ok := h.restaurantPartner(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "itemId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := p.RemoveMenuItem(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) partnerOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := h.restaurantPartner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.ViewOrders(r.Context()))
}

func (h *Handler) partnerUpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := h.restaurantPartner(w, r)
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
	o, err := p.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) partnerSales(w http.ResponseWriter, r *http.Request) {
	p, ok := h.restaurantPartner(w, r)
	if !ok {
		return
	}
	s, err := p.Sales(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
