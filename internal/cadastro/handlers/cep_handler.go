package handlers

import (
	"net/http"
)

func (h *Handler) lookupCEP(w http.ResponseWriter, r *http.Request, params map[string]string) {
	addr, err := h.addresses.Lookup(r.Context(), params["cep"])
	if err != nil {
		h.respondError(w, r, "lookup_cep", err)
		return
	}
	h.respondOK(w, "lookup_cep", http.StatusOK, addr)
}
