package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/beatwatch/complaint-server/internal/models"
	"go.uber.org/zap"
)

// fakeQuerier serves canned pages per status and can be told to fail a
// specific page of a specific status.
type fakeQuerier struct {
	mu       sync.Mutex
	pages    map[string][][]models.Complaint // status -> pages of complaints
	failAt   map[string]int                  // status -> page number that errors
	requests []models.QueryRequest
}

func (f *fakeQuerier) Query(_ context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if page, ok := f.failAt[req.ComplaintStatus]; ok && page == req.Page {
		return nil, errors.New("record store unavailable")
	}

	pages := f.pages[req.ComplaintStatus]
	resp := &models.QueryResponse{TotalPages: len(pages), Page: req.Page}
	if req.Page < 1 || req.Page > len(pages) {
		resp.Page = -1
		resp.Message = "Page out of limit"
		return resp, nil
	}
	resp.ComplaintsData = pages[req.Page-1]
	return resp, nil
}

func complaint(id, status string, days ...string) models.Complaint {
	return models.Complaint{ComplaintID: id, ComplaintStatus: status, DaysOfWeek: days}
}

func newTestSearch(q Querier) *SearchService {
	return NewSearchService(q, "complaints", zap.NewNop().Sugar())
}

func TestSearchFansOutAllStatusesByDefault(t *testing.T) {
	q := &fakeQuerier{pages: map[string][][]models.Complaint{
		"Open":      {{complaint("o1", "Open"), complaint("o2", "Open")}},
		"Follow-Up": {{complaint("f1", "Follow-Up")}},
		"Closed":    {},
		"Red-Star":  {{complaint("r1", "Red-Star")}},
	}}

	result := newTestSearch(q).Search(context.Background(), models.RawFilterInput{})

	seen := map[string]bool{}
	for _, req := range q.requests {
		seen[req.ComplaintStatus] = true
	}
	for _, status := range []string{"Open", "Follow-Up", "Closed", "Red-Star"} {
		if !seen[status] {
			t.Errorf("status %q was never queried", status)
		}
	}

	if result.Total != 4 {
		t.Errorf("Total = %d; want 4", result.Total)
	}
	sum := 0
	for _, n := range result.StatusCounts {
		sum += n
	}
	if sum != result.Total {
		t.Errorf("sum(StatusCounts) = %d; want Total = %d", sum, result.Total)
	}
}

func TestSearchOrderIsStatusThenPage(t *testing.T) {
	q := &fakeQuerier{pages: map[string][][]models.Complaint{
		"Open":   {{complaint("o1", "Open")}, {complaint("o2", "Open")}},
		"Closed": {{complaint("c1", "Closed")}},
	}}

	result := newTestSearch(q).Search(context.Background(), models.RawFilterInput{
		Statuses: []string{"Open", "Closed"},
	})

	var got []string
	for _, c := range result.Complaints {
		got = append(got, c.ComplaintID)
	}
	want := []string{"o1", "o2", "c1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("complaint order = %v; want %v", got, want)
	}
}

func TestSearchPartialFailureIsolation(t *testing.T) {
	q := &fakeQuerier{
		pages: map[string][][]models.Complaint{
			"Open": {
				{complaint("o1", "Open")},
				{complaint("o2", "Open")},
			},
			"Closed": {
				{complaint("c1", "Closed")},
				{complaint("c2", "Closed")},
			},
		},
		failAt: map[string]int{"Closed": 2},
	}

	result := newTestSearch(q).Search(context.Background(), models.RawFilterInput{
		Statuses: []string{"Open", "Closed"},
	})

	// All Open complaints kept, plus Closed page 1; Closed page 2's failure
	// is absorbed.
	if result.StatusCounts["Open"] != 2 {
		t.Errorf("Open count = %d; want 2", result.StatusCounts["Open"])
	}
	if result.StatusCounts["Closed"] != 1 {
		t.Errorf("Closed count = %d; want 1", result.StatusCounts["Closed"])
	}
	if result.Total != 3 {
		t.Errorf("Total = %d; want 3", result.Total)
	}
}

func TestSearchDayOfWeekFilter(t *testing.T) {
	q := &fakeQuerier{pages: map[string][][]models.Complaint{
		"Open": {{
			complaint("tue", "Open", "Tuesday"),
			complaint("monfri", "Open", "Monday", "Friday"),
			complaint("nodays", "Open"),
		}},
	}}

	t.Run("empty filter keeps everything", func(t *testing.T) {
		result := newTestSearch(q).Search(context.Background(), models.RawFilterInput{
			Statuses: []string{"Open"},
		})
		if result.Total != 3 {
			t.Errorf("Total = %d; want 3", result.Total)
		}
	})

	t.Run("overlap keeps, disjoint drops", func(t *testing.T) {
		result := newTestSearch(q).Search(context.Background(), models.RawFilterInput{
			Statuses:   []string{"Open"},
			DaysOfWeek: []string{"Monday"},
		})
		if result.Total != 1 {
			t.Fatalf("Total = %d; want 1", result.Total)
		}
		if result.Complaints[0].ComplaintID != "monfri" {
			t.Errorf("kept %q; want \"monfri\"", result.Complaints[0].ComplaintID)
		}
	})
}

func TestSearchSendsDateRangeOnlyWithRelativeTimes(t *testing.T) {
	q := &fakeQuerier{pages: map[string][][]models.Complaint{"Open": {}}}
	svc := newTestSearch(q)

	result := svc.Search(context.Background(), models.RawFilterInput{
		Statuses: []string{"Open"},
	})
	if !result.Range.IsZero() {
		t.Errorf("Range = %+v; want empty sentinel", result.Range)
	}
	for _, req := range q.requests {
		if req.StartDate != "" || req.EndDate != "" {
			t.Errorf("request carried dates %q..%q without a relative-time filter", req.StartDate, req.EndDate)
		}
	}

	q.requests = nil
	result = svc.Search(context.Background(), models.RawFilterInput{
		Statuses:      []string{"Open"},
		RelativeTimes: []string{"Yesterday"},
	})
	if result.Range.IsZero() {
		t.Fatal("Range is empty; want resolved dates")
	}
	for _, req := range q.requests {
		if req.StartDate != result.Range.Start || req.EndDate != result.Range.End {
			t.Errorf("request dates %q..%q; want %q..%q",
				req.StartDate, req.EndDate, result.Range.Start, result.Range.End)
		}
	}
}

// growingQuerier raises totalPages on its second response to verify the page
// bound refreshes from the most recent reply.
type growingQuerier struct {
	calls int
}

func (g *growingQuerier) Query(_ context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	g.calls++
	totalPages := 2
	if g.calls >= 2 {
		totalPages = 3
	}
	if req.Page > totalPages {
		return &models.QueryResponse{TotalPages: totalPages, Page: -1}, nil
	}
	return &models.QueryResponse{
		TotalPages:     totalPages,
		Page:           req.Page,
		ComplaintsData: []models.Complaint{complaint(fmt.Sprintf("p%d", req.Page), req.ComplaintStatus)},
	}, nil
}

func TestSearchTotalPagesRefreshesMidStream(t *testing.T) {
	// Page 1 reports 2 total pages; page 2 reports 3. The loop must pick up
	// the refreshed bound and fetch the third page.
	q := &growingQuerier{}
	result := newTestSearch(q).Search(context.Background(), models.RawFilterInput{
		Statuses: []string{"Open"},
	})
	if result.Total != 3 {
		t.Errorf("Total = %d; want 3 after totalPages refresh", result.Total)
	}
}

// zeroPagesQuerier omits totalPages entirely, as a malformed response would.
type zeroPagesQuerier struct{ calls int }

func (z *zeroPagesQuerier) Query(context.Context, models.QueryRequest) (*models.QueryResponse, error) {
	z.calls++
	return &models.QueryResponse{Page: 1}, nil
}

func TestSearchMissingTotalPagesDefaultsToOne(t *testing.T) {
	q := &zeroPagesQuerier{}
	result := newTestSearch(q).Search(context.Background(), models.RawFilterInput{
		Statuses: []string{"Open"},
	})
	if q.calls != 1 {
		t.Errorf("query calls = %d; want exactly 1 (no infinite pagination)", q.calls)
	}
	if result.Total != 0 {
		t.Errorf("Total = %d; want 0", result.Total)
	}
}

func TestSearchEmptyResultIsWellFormed(t *testing.T) {
	q := &fakeQuerier{pages: map[string][][]models.Complaint{}}
	result := newTestSearch(q).Search(context.Background(), models.RawFilterInput{
		BeatNums: []string{"99"}, // dropped by normalization
	})

	if result == nil {
		t.Fatal("Search returned nil")
	}
	if result.Total != 0 || len(result.Complaints) != 0 {
		t.Errorf("result = %+v; want empty", result)
	}
	if len(result.Filters.BeatNums) != 0 {
		t.Errorf("BeatNums = %v; want dropped", result.Filters.BeatNums)
	}
}
