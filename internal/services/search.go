// Package services contains business logic layers.
// Services are called by handlers and interact with the record store,
// the session store, and the downstream relays.
package services

import (
	"context"
	"sync"

	"github.com/beatwatch/complaint-server/internal/filters"
	"github.com/beatwatch/complaint-server/internal/models"
	"go.uber.org/zap"
)

// ComplaintTimezone is the civil timezone sent with every record-store query.
const ComplaintTimezone = "America/Phoenix"

// Querier is the record-store query boundary: one paginated request for one
// status. Implemented by ComplaintStore (in-process) and recordstore.Client
// (remote). Calls are idempotent and read-only.
type Querier interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
}

// SearchService normalizes raw filter input and aggregates paginated,
// per-status record-store results into a single SearchResult.
type SearchService struct {
	querier Querier
	table   string
	logger  *zap.SugaredLogger
}

// NewSearchService creates a new search service
func NewSearchService(querier Querier, table string, logger *zap.SugaredLogger) *SearchService {
	return &SearchService{querier: querier, table: table, logger: logger}
}

// Search runs a complaint search for the given raw filters. It always
// returns a well-formed result: per-status fetch failures are logged,
// terminate pagination for that status only, and leave already-gathered
// complaints in place. Reads only; nothing is written to the store.
func (s *SearchService) Search(ctx context.Context, raw models.RawFilterInput) *models.SearchResult {
	normalized := filters.Normalize(raw)

	var dateRange models.DateRange
	if len(normalized.RelativeTimes) > 0 {
		dateRange = filters.ResolveRange(normalized.RelativeTimes)
		s.logger.Infow("Resolved relative times",
			"phrases", normalized.RelativeTimes,
			"start", dateRange.Start,
			"end", dateRange.End,
		)
	}

	// With no status filter, fan out across every status.
	statuses := normalized.Statuses
	if len(statuses) == 0 {
		statuses = filters.ComplaintStatuses
		s.logger.Info("No statuses provided, searching all statuses")
	}

	// Each status paginates independently and idempotently, so the statuses
	// run concurrently. Results are assembled by status index to keep the
	// ordering deterministic, and one status's failure never cancels the
	// others.
	perStatus := make([][]models.Complaint, len(statuses))
	var wg sync.WaitGroup
	for i, status := range statuses {
		wg.Add(1)
		go func(i int, status string) {
			defer wg.Done()
			perStatus[i] = s.fetchStatus(ctx, status, normalized, dateRange)
		}(i, status)
	}
	wg.Wait()

	result := &models.SearchResult{
		StatusCounts: make(map[string]int, len(statuses)),
		Filters:      normalized,
		Range:        dateRange,
	}
	for i, status := range statuses {
		result.Complaints = append(result.Complaints, perStatus[i]...)
		result.StatusCounts[status] = len(perStatus[i])
		result.Total += len(perStatus[i])
	}

	return result
}

// fetchStatus pages through the record store for a single status, applying
// the client-side day-of-week refinement per page. A failed page fetch stops
// this status and returns whatever was gathered so far.
func (s *SearchService) fetchStatus(ctx context.Context, status string, f models.NormalizedFilterSet, dateRange models.DateRange) []models.Complaint {
	var gathered []models.Complaint

	currentPage := 1
	totalPages := 1 // refreshed from each response
	for currentPage <= totalPages {
		req := models.QueryRequest{
			TableName:       s.table,
			BeatNumber:      f.BeatNums,
			ProblemCategory: f.Categories,
			ComplaintStatus: status,
			Page:            currentPage,
			Timezone:        ComplaintTimezone,
		}
		if !dateRange.IsZero() {
			req.StartDate = dateRange.Start
			req.EndDate = dateRange.End
		}

		resp, err := s.querier.Query(ctx, req)
		if err != nil {
			s.logger.Errorw("Page fetch failed, keeping partial results",
				"status", status,
				"page", currentPage,
				"error", err,
			)
			break
		}

		// A missing or zero totalPages would loop forever; default to 1.
		totalPages = resp.TotalPages
		if totalPages < 1 {
			totalPages = 1
		}
		if resp.Page == -1 {
			// Requested page fell out of range (the result set shrank
			// between calls); the page is empty, stop here.
			break
		}

		for _, complaint := range resp.ComplaintsData {
			if daysOverlap(f.DaysOfWeek, complaint.DaysOfWeek) {
				gathered = append(gathered, complaint)
			}
		}

		currentPage++
	}

	return gathered
}

// daysOverlap reports whether the complaint should be kept under the
// day-of-week filter: an empty filter keeps everything, otherwise any shared
// day is enough.
func daysOverlap(filterDays, complaintDays []string) bool {
	if len(filterDays) == 0 {
		return true
	}
	for _, want := range filterDays {
		for _, have := range complaintDays {
			if want == have {
				return true
			}
		}
	}
	return false
}
