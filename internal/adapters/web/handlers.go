package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"invoice-agent/internal/app"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Options configures the HTTP adapter.
type Options struct {
	// AllowedOrigins is the comma-separated ALLOWED_ORIGINS value.
	AllowedOrigins string
	// Debug exposes internal error text in chat failure responses.
	Debug  bool
	Logger *zap.Logger
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
	log    *zap.Logger
	debug  bool
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{svc: svc, log: log, debug: opts.Debug}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(opts.AllowedOrigins))

	r.Get("/api/health", h.health)

	// Downloads are GETs without a body.
	r.Get("/api/invoices/download/{filename}", h.downloadInvoice)

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Post("/api/invoices/chat", h.chat)
		r.Get("/api/invoices", h.listInvoices)
		r.Get("/api/invoices/drafts/{conversationId}", h.getDraft)
		r.Delete("/api/invoices/drafts/{conversationId}", h.resetDraft)

		r.Get("/api/clients", h.listClients)
		r.Post("/api/clients", h.createClient)
		r.Put("/api/clients/{email}", h.updateClient)
		r.Delete("/api/clients/{email}", h.deleteClient)

		r.Get("/api/inventory", h.listItems)
		r.Post("/api/inventory", h.createItem)
		r.Put("/api/inventory/{name}", h.updateItem)
		r.Delete("/api/inventory/{name}", h.deleteItem)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// pathParam returns the unescaped {name} URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
