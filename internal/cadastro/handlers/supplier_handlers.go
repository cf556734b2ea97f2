package handlers

import (
	"net/http"

	"github.com/gartstein/cadastro/internal/cadastro/models"
)

// listSuppliers accepts the optional nome and cpfCnpj query filters.
func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	query := r.URL.Query()
	filter := models.SupplierFilter{
		Nome:    query.Get("nome"),
		CPFCNPJ: query.Get("cpfCnpj"),
	}
	suppliers, err := h.suppliers.ListSuppliers(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, "list_suppliers", err)
		return
	}
	h.respondOK(w, "list_suppliers", http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "id")
	if err != nil {
		h.respondError(w, r, "get_supplier", err)
		return
	}
	supplier, err := h.suppliers.GetSupplier(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "get_supplier", err)
		return
	}
	h.respondOK(w, "get_supplier", http.StatusOK, supplier)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var supplier models.Supplier
	if err := decodeJSON(w, r, &supplier); err != nil {
		h.respondError(w, r, "create_supplier", err)
		return
	}
	created, err := h.suppliers.CreateSupplier(r.Context(), &supplier)
	if err != nil {
		h.respondError(w, r, "create_supplier", err)
		return
	}
	w.Header().Set("Location", created.Location())
	h.respondOK(w, "create_supplier", http.StatusCreated, created)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "id")
	if err != nil {
		h.respondError(w, r, "update_supplier", err)
		return
	}
	var update models.SupplierUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		h.respondError(w, r, "update_supplier", err)
		return
	}
	updated, err := h.suppliers.UpdateSupplier(r.Context(), id, &update)
	if err != nil {
		h.respondError(w, r, "update_supplier", err)
		return
	}
	h.respondOK(w, "update_supplier", http.StatusOK, updated)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "id")
	if err != nil {
		h.respondError(w, r, "delete_supplier", err)
		return
	}
	if err := h.suppliers.DeleteSupplier(r.Context(), id); err != nil {
		h.respondError(w, r, "delete_supplier", err)
		return
	}
	h.respondOK(w, "delete_supplier", http.StatusNoContent, nil)
}
