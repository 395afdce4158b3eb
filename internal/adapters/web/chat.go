package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"invoice-agent/internal/app"
	"invoice-agent/internal/core"
)

const chatFailureMessage = "I encountered a system error. Please try again."

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type chatResponse struct {
	Response       string            `json:"response"`
	ConversationID string            `json:"conversationId"`
	Draft          core.InvoiceDraft `json:"draft"`
	Totals         *core.Totals      `json:"totals,omitempty"`
	ArtifactURL    *string           `json:"artifactUrl"`
	InvoiceNumber  *string           `json:"invoiceNumber"`
	MissingFields  []string          `json:"missingFields,omitempty"`
	IsFinal        bool              `json:"isFinal"`
}

type chatFailure struct {
	Response  string `json:"response"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// chat handles POST /api/invoices/chat
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Chat(r.Context(), app.ChatRequest{
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		if !errors.Is(err, app.ErrTurnFailed) {
			h.writeServiceError(w, r, err)
			return
		}
		msg := "internal error"
		if h.debug {
			msg = err.Error()
		}
		writeJSONStatus(w, http.StatusInternalServerError, chatFailure{
			Response:  chatFailureMessage,
			Error:     msg,
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}

	writeJSON(w, chatResponse{
		Response:       res.Response,
		ConversationID: res.ConversationID,
		Draft:          res.Draft,
		Totals:         res.Totals,
		ArtifactURL:    nullable(res.ArtifactURL),
		InvoiceNumber:  nullable(res.InvoiceNumber),
		MissingFields:  res.MissingFields,
		IsFinal:        res.IsFinal,
	})
}

type draftResponse struct {
	ConversationID string            `json:"conversationId"`
	Draft          core.InvoiceDraft `json:"draft"`
	Totals         core.Totals       `json:"totals"`
	ArtifactURL    *string           `json:"artifactUrl"`
	Found          bool              `json:"found"`
}

// getDraft handles GET /api/invoices/drafts/{conversationId}
func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetDraft(r.Context(), pathParam(r, "conversationId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, draftResponse{
		ConversationID: res.ConversationID,
		Draft:          res.Draft,
		Totals:         res.Totals,
		ArtifactURL:    nullable(res.ArtifactURL),
		Found:          res.Found,
	})
}

// resetDraft handles DELETE /api/invoices/drafts/{conversationId}
func (h *Handler) resetDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetDraft(r.Context(), pathParam(r, "conversationId")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type invoiceFileResponse struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Filename      string `json:"filename"`
	URL           string `json:"url"`
}

// listInvoices handles GET /api/invoices
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListInvoices(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out := make([]invoiceFileResponse, 0, len(res.Invoices))
	for _, f := range res.Invoices {
		out = append(out, invoiceFileResponse{InvoiceNumber: f.Number, Filename: f.Filename, URL: f.URL})
	}
	writeJSON(w, map[string]any{"invoices": out})
}

// downloadInvoice handles GET /api/invoices/download/{filename}
func (h *Handler) downloadInvoice(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Download(r.Context(), pathParam(r, "filename"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Content)))
	_, _ = w.Write(res.Content)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
