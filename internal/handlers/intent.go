package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/beatwatch/complaint-server/internal/filters"
	"github.com/beatwatch/complaint-server/internal/models"
	"github.com/beatwatch/complaint-server/internal/services"
	"go.uber.org/zap"
)

// Intent names routed by the conversational platform.
const (
	intentQueryComplaints = "Query_Complaint_Info"
	intentSendEmail       = "sendEmail"
	intentFallback        = "FallbackIntent"
)

// maxComplaintsShown caps the detail section of a chat reply.
const maxComplaintsShown = 5

// IntentHandler is the conversational boundary: it accepts platform-shaped
// intent events, flattens slot values into raw filters, and routes each
// intent to search, email, or the fallback reply.
type IntentHandler struct {
	search   *services.SearchService
	email    *services.EmailService
	sessions *services.SessionStore
	logger   *zap.SugaredLogger
}

// NewIntentHandler creates a new intent handler
func NewIntentHandler(search *services.SearchService, email *services.EmailService, sessions *services.SessionStore, logger *zap.SugaredLogger) *IntentHandler {
	return &IntentHandler{search: search, email: email, sessions: sessions, logger: logger}
}

// Handle handles POST /api/v1/intent.
func (h *IntentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var event models.IntentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := event.SessionState.Intent.Name
	switch name {
	case intentQueryComplaints:
		h.queryComplaints(w, r, event)
	case intentSendEmail:
		h.sendEmail(w, r, event)
	case intentFallback:
		respondJSON(w, http.StatusOK, closeIntent(name, "Fulfilled", "PlainText",
			"I can look up traffic complaints by beat, category, status, day of week, or time period. "+
				"Try something like \"show open speed complaints in beat 5 from last week\"."))
	default:
		respondJSON(w, http.StatusOK, closeIntent(name, "Failed", "PlainText",
			fmt.Sprintf("The intent '%s' is not yet implemented.", name)))
	}
}

func (h *IntentHandler) queryComplaints(w http.ResponseWriter, r *http.Request, event models.IntentEvent) {
	raw := flattenSlots(event.SessionState.Intent.Slots)

	// Stash the filters so a follow-up sendEmail intent can reuse them.
	if event.SessionID != "" {
		if err := h.sessions.SaveFilters(r.Context(), event.SessionID, raw); err != nil {
			h.logger.Errorw("Failed to save session filters", "session", event.SessionID, "error", err)
		}
	}

	result := h.search.Search(r.Context(), raw)
	message := formatSearchMessage(result)

	respondJSON(w, http.StatusOK, closeIntent(event.SessionState.Intent.Name, "Fulfilled", "Markdown", message))
}

func (h *IntentHandler) sendEmail(w http.ResponseWriter, r *http.Request, event models.IntentEvent) {
	name := event.SessionState.Intent.Name

	address := slotValue(event.SessionState.Intent.Slots, "email")
	if address == "" {
		respondJSON(w, http.StatusOK, closeIntent(name, "Failed", "PlainText",
			"I couldn't find a valid email address in your request. Please try again with a valid email."))
		return
	}
	if err := h.email.ValidateRecipient(address); err != nil {
		h.logger.Infow("Rejected email recipient", "sendTo", address, "error", err)
		respondJSON(w, http.StatusOK, closeIntent(name, "Failed", "PlainText",
			"That email address isn't one I can send to. Please use a department address."))
		return
	}

	raw, err := h.sessions.LoadFilters(r.Context(), event.SessionID)
	if err != nil {
		h.logger.Errorw("Failed to load session filters", "session", event.SessionID, "error", err)
		// Fall through with empty filters rather than failing the intent.
		raw = models.RawFilterInput{}
	}

	result := h.search.Search(r.Context(), raw)

	if err := h.email.Send(r.Context(), result, address); err != nil {
		h.logger.Errorw("Failed to dispatch email", "sendTo", address, "error", err)
		respondJSON(w, http.StatusOK, closeIntent(name, "Failed", "PlainText",
			"I encountered an error while trying to send the email. Please try again later."))
		return
	}

	respondJSON(w, http.StatusOK, closeIntent(name, "Fulfilled", "PlainText",
		fmt.Sprintf("I've sent %s to %s. Please check your inbox shortly.",
			pluralComplaints(result.Total), address)))
}

// flattenSlots converts the platform's nested slot structure into the raw
// filter shape the search service accepts.
func flattenSlots(slots map[string]models.Slot) models.RawFilterInput {
	return models.RawFilterInput{
		BeatNums:      slotValues(slots, "beatNums"),
		Categories:    slotValues(slots, "category"),
		Statuses:      slotValues(slots, "status"),
		DaysOfWeek:    slotValues(slots, "daysOfWeek"),
		RelativeTimes: slotValues(slots, "relativeTimes"),
	}
}

func slotValues(slots map[string]models.Slot, name string) []string {
	slot, ok := slots[name]
	if !ok {
		return nil
	}
	var values []string
	for _, v := range slot.Values {
		if v.Value.InterpretedValue != "" {
			values = append(values, v.Value.InterpretedValue)
		}
	}
	return values
}

func slotValue(slots map[string]models.Slot, name string) string {
	values := slotValues(slots, name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// formatSearchMessage renders a search result as the chat reply: the applied
// criteria, per-status counts, and details for the first few complaints.
func formatSearchMessage(result *models.SearchResult) string {
	var b strings.Builder

	b.WriteString("### I found information based on your search criteria:\n")
	fmt.Fprintf(&b, "- **Beat Numbers**: %s\n", orAll(result.Filters.BeatNums))
	fmt.Fprintf(&b, "- **Categories**: %s\n", orAll(result.Filters.Categories))
	fmt.Fprintf(&b, "- **Statuses**: %s\n", orAll(result.Filters.Statuses))
	if len(result.Filters.DaysOfWeek) > 0 {
		fmt.Fprintf(&b, "- **Days of Week**: %s\n", strings.Join(result.Filters.DaysOfWeek, ", "))
	}
	if len(result.Filters.RelativeTimes) > 0 {
		fmt.Fprintf(&b, "- **Time Period**: %s (%s to %s Arizona time)\n",
			strings.Join(result.Filters.RelativeTimes, ", "), result.Range.Start, result.Range.End)
	}
	fmt.Fprintf(&b, "- **Query Time**: %s (Arizona time)\n\n",
		filters.Today().Format("2006-01-02 at 15:04:05"))

	if result.Total == 0 {
		b.WriteString("I couldn't find any complaints matching your criteria. Try adjusting your filters for different results.")
		return b.String()
	}

	b.WriteString("### Summary\n")
	fmt.Fprintf(&b, "I found **%d** complaints matching your criteria:\n", result.Total)
	for _, status := range filters.ComplaintStatuses {
		if count := result.StatusCounts[status]; count > 0 {
			fmt.Fprintf(&b, "- **%s**: %s\n", status, pluralComplaints(count))
		}
	}

	b.WriteString("\n### Complaint Details\n")
	shown := len(result.Complaints)
	if shown > maxComplaintsShown {
		shown = maxComplaintsShown
	}
	for i := 0; i < shown; i++ {
		c := result.Complaints[i]
		fmt.Fprintf(&b, "#### Complaint #%d (ID: %s)\n", i+1, c.ComplaintID)
		fmt.Fprintf(&b, "**Filed on**: %s (Arizona time)\n\n", valueOr(c.DateOfComplaint, "Unknown date"))
		fmt.Fprintf(&b, "**Category**: %s\n\n", valueOr(c.ProblemCategory, "Not specified"))
		fmt.Fprintf(&b, "**Beat**: %s\n\n", valueOr(c.BeatNumber, "Not specified"))
		fmt.Fprintf(&b, "**Status**: %s\n\n", valueOr(c.ComplaintStatus, "Not specified"))
		fmt.Fprintf(&b, "**Location**: %s\n\n", valueOr(c.AddressStreet, "Unknown location"))
		if occurs := formatOccurrence(c); occurs != "" {
			fmt.Fprintf(&b, "**Occurs**: %s\n", occurs)
		}
		if c.Description != "" {
			fmt.Fprintf(&b, "\n**Issue Description**:\n> %s\n", c.Description)
		}
		if i < shown-1 {
			b.WriteString("\n---\n")
		}
	}

	if len(result.Complaints) > shown {
		fmt.Fprintf(&b, "\n\n_...and %d more complaints not shown. Please refine your search if you need more specific results._",
			len(result.Complaints)-shown)
	}

	return b.String()
}

// formatOccurrence describes when a complaint's problem happens: the days of
// week and the time-of-day window, whichever are present.
func formatOccurrence(c models.Complaint) string {
	var parts []string
	if len(c.DaysOfWeek) > 0 {
		parts = append(parts, "on "+strings.Join(c.DaysOfWeek, ", "))
	}
	if c.StartTime != "" && c.EndTime != "" {
		parts = append(parts, fmt.Sprintf("between %s and %s (Arizona time)",
			clipTime(c.StartTime), clipTime(c.EndTime)))
	}
	return strings.Join(parts, " ")
}

// clipTime reduces HH:MM:SS to HH:MM.
func clipTime(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

func orAll(values []string) string {
	if len(values) == 0 {
		return "All"
	}
	return strings.Join(values, ", ")
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func pluralComplaints(n int) string {
	if n == 1 {
		return "1 complaint"
	}
	return fmt.Sprintf("%d complaints", n)
}

// closeIntent builds the platform reply envelope for a closed dialog.
func closeIntent(intentName, state, contentType, content string) models.IntentResponse {
	var resp models.IntentResponse
	resp.SessionState.DialogAction.Type = "Close"
	resp.SessionState.Intent.Name = intentName
	resp.SessionState.Intent.State = state
	resp.Messages = []models.IntentMessage{{ContentType: contentType, Content: content}}
	return resp
}
