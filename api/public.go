package api

import (
	"net/http"

	"food-delivery/models"
	"food-delivery/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.Accounts.Signup(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.Accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	token, err := h.Sessions.Create(r.Context(), a)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Account: a})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Delete(r.Context(), bearerToken(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Roles.Catalog.ListRestaurants(r.Context()))
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurantId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Roles.Catalog.GetMenu(r.Context(), id))
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item, ok := h.Roles.Catalog.GetItemDetails(r.Context(), id)
	if !ok {
		h.writeError(w, r, models.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
