// Package handlers contains HTTP request handlers for the complaint API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/beatwatch/complaint-server/internal/models"
	"github.com/beatwatch/complaint-server/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ComplaintHandler handles complaint intake, lookup, the record-store query
// endpoint, and the beat heatmap.
type ComplaintHandler struct {
	store  *services.ComplaintStore
	beats  *services.BeatResolver
	logger *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(store *services.ComplaintStore, beats *services.BeatResolver, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{store: store, beats: beats, logger: logger}
}

// Submit handles POST /api/v1/complaints.
// Geocodes the reported location to a beat, then stores the complaint. A
// geocoder failure leaves the beat empty; intake still succeeds.
func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var c models.Complaint
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if c.Description == "" || c.ProblemCategory == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: description, problemCategory")
		return
	}

	beat, coords, err := h.beats.Resolve(r.Context(), &c)
	if err != nil {
		h.logger.Errorw("Beat geocoding failed, storing without beat", "error", err)
	} else if beat != "" {
		c.BeatNumber = beat
		c.Coordinates = coords
	}

	if err := h.store.Create(r.Context(), &c); err != nil {
		h.logger.Errorw("Failed to create complaint", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to submit complaint")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"complaintId":     c.ComplaintID,
		"beatNumber":      c.BeatNumber,
		"dateOfComplaint": c.DateOfComplaint,
		"message":         "Complaint submitted successfully",
	})
}

// Get handles GET /api/v1/complaints/{complaintId}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "complaintId")
	if id == "" {
		respondError(w, http.StatusBadRequest, "Complaint ID required")
		return
	}

	c, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Complaint not found")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// updateRequest is the body for a single-attribute complaint update.
type updateRequest struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// Update handles PUT /api/v1/complaints/{complaintId} (JWT-protected).
func (h *ComplaintHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "complaintId")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Attribute == "" {
		respondError(w, http.StatusBadRequest, "Attribute required")
		return
	}

	updated, err := h.store.UpdateField(r.Context(), id, req.Attribute, req.Value)
	if err != nil {
		h.logger.Errorw("Failed to update complaint", "id", id, "error", err)
		respondError(w, http.StatusBadRequest, "Failed to update complaint")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Query handles POST /api/v1/complaints/query — the record-store query
// contract served over HTTP for remote search orchestrators and the portal.
func (h *ComplaintHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.store.Query(r.Context(), req)
	if err != nil {
		h.logger.Errorw("Record-store query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to query complaints")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Heatmap handles GET /api/v1/heatmap — open complaint counts per beat.
func (h *ComplaintHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.OpenCountsByBeat(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to build heatmap", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch heatmap")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
