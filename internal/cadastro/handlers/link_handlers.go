package handlers

import (
	"net/http"
)

func (h *Handler) linkSupplier(w http.ResponseWriter, r *http.Request, params map[string]string) {
	companyID, supplierID, err := linkIDs(params)
	if err != nil {
		h.respondError(w, r, "link_supplier", err)
		return
	}
	link, err := h.links.LinkSupplier(r.Context(), companyID, supplierID)
	if err != nil {
		h.respondError(w, r, "link_supplier", err)
		return
	}
	w.Header().Set("Location", link.Location())
	h.respondOK(w, "link_supplier", http.StatusCreated, link)
}

func (h *Handler) unlinkSupplier(w http.ResponseWriter, r *http.Request, params map[string]string) {
	companyID, supplierID, err := linkIDs(params)
	if err != nil {
		h.respondError(w, r, "unlink_supplier", err)
		return
	}
	if err := h.links.UnlinkSupplier(r.Context(), companyID, supplierID); err != nil {
		h.respondError(w, r, "unlink_supplier", err)
		return
	}
	h.respondOK(w, "unlink_supplier", http.StatusNoContent, nil)
}

func (h *Handler) listLinkedSuppliers(w http.ResponseWriter, r *http.Request, params map[string]string) {
	companyID, err := pathID(params, "empresaId")
	if err != nil {
		h.respondError(w, r, "list_linked_suppliers", err)
		return
	}
	suppliers, err := h.links.ListLinkedSuppliers(r.Context(), companyID)
	if err != nil {
		h.respondError(w, r, "list_linked_suppliers", err)
		return
	}
	h.respondOK(w, "list_linked_suppliers", http.StatusOK, suppliers)
}

func linkIDs(params map[string]string) (int64, int64, error) {
	companyID, err := pathID(params, "empresaId")
	if err != nil {
		return 0, 0, err
	}
	supplierID, err := pathID(params, "fornecedorId")
	if err != nil {
		return 0, 0, err
	}
	return companyID, supplierID, nil
}
