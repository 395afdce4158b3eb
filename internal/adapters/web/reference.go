package web

import (
	"net/http"

	"invoice-agent/internal/core"
)

// listClients handles GET /api/clients?search=
func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListClients(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	clients := res.Clients
	if clients == nil {
		clients = []core.Client{}
	}
	writeJSON(w, clients)
}

// createClient handles POST /api/clients
func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req core.Client
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateClient(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res.Client)
}

// updateClient handles PUT /api/clients/{email}
func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req core.Client
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.UpdateClient(r.Context(), pathParam(r, "email"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res.Client)
}

// deleteClient handles DELETE /api/clients/{email}
func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteClient(r.Context(), pathParam(r, "email")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listItems handles GET /api/inventory?search=
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListItems(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	items := res.Items
	if items == nil {
		items = []core.InventoryItem{}
	}
	writeJSON(w, items)
}

// createItem handles POST /api/inventory
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req core.InventoryItem
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateItem(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res.Item)
}

// updateItem handles PUT /api/inventory/{name}
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req core.InventoryItem
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.UpdateItem(r.Context(), pathParam(r, "name"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res.Item)
}

// deleteItem handles DELETE /api/inventory/{name}
func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteItem(r.Context(), pathParam(r, "name")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
