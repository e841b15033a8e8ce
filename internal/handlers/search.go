package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/beatwatch/complaint-server/internal/models"
	"github.com/beatwatch/complaint-server/internal/services"
	"go.uber.org/zap"
)

// SearchHandler exposes the complaint search and the email-results flow to
// the portal, outside the conversational interface.
type SearchHandler struct {
	search *services.SearchService
	email  *services.EmailService
	logger *zap.SugaredLogger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search *services.SearchService, email *services.EmailService, logger *zap.SugaredLogger) *SearchHandler {
	return &SearchHandler{search: search, email: email, logger: logger}
}

// Search handles POST /api/v1/search. The body is the flattened raw filter
// shape; the response is always a well-formed SearchResult, even when every
// filter value was dropped or a status's pages failed mid-fetch.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var raw models.RawFilterInput
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := h.search.Search(r.Context(), raw)
	respondJSON(w, http.StatusOK, result)
}

// emailRequest is the body for emailing search results directly.
type emailRequest struct {
	Filters models.RawFilterInput `json:"filters"`
	SendTo  string                `json:"sendTo"`
}

// Email handles POST /api/v1/search/email: run the search, then hand the
// matches to the email relay.
func (h *SearchHandler) Email(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.email.ValidateRecipient(req.SendTo); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid recipient address")
		return
	}

	result := h.search.Search(r.Context(), req.Filters)

	if err := h.email.Send(r.Context(), result, req.SendTo); err != nil {
		h.logger.Errorw("Failed to dispatch email", "sendTo", req.SendTo, "error", err)
		respondError(w, http.StatusBadGateway, "Failed to send email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sendTo": req.SendTo,
		"total":  result.Total,
	})
}
