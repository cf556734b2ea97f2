package handlers

import (
	"net/http"

	"github.com/gartstein/cadastro/internal/cadastro/models"
)

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	companies, err := h.companies.ListCompanies(r.Context())
	if err != nil {
		h.respondError(w, r, "list_companies", err)
		return
	}
	h.respondOK(w, "list_companies", http.StatusOK, companies)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "id")
	if err != nil {
		h.respondError(w, r, "get_company", err)
		return
	}
	company, err := h.companies.GetCompany(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "get_company", err)
		return
	}
	h.respondOK(w, "get_company", http.StatusOK, company)
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var company models.Company
	if err := decodeJSON(w, r, &company); err != nil {
		h.respondError(w, r, "create_company", err)
		return
	}
	created, err := h.companies.CreateCompany(r.Context(), &company)
	if err != nil {
		h.respondError(w, r, "create_company", err)
		return
	}
	w.Header().Set("Location", created.Location())
	h.respondOK(w, "create_company", http.StatusCreated, created)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "id")
	if err != nil {
		h.respondError(w, r, "update_company", err)
		return
	}
	var update models.CompanyUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		h.respondError(w, r, "update_company", err)
		return
	}
	updated, err := h.companies.UpdateCompany(r.Context(), id, &update)
	if err != nil {
		h.respondError(w, r, "update_company", err)
		return
	}
	h.respondOK(w, "update_company", http.StatusOK, updated)
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathID(params, "id")
	if err != nil {
		h.respondError(w, r, "delete_company", err)
		return
	}
	if err := h.companies.DeleteCompany(r.Context(), id); err != nil {
		h.respondError(w, r, "delete_company", err)
		return
	}
	h.respondOK(w, "delete_company", http.StatusNoContent, nil)
}
